// Package professional holds the roster of care professionals available for
// assignment to home visits.
package professional

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/homevisit/homevisit/internal/platform/docstore"
	"github.com/homevisit/homevisit/internal/platform/notification"
)

// StorageKey is the document key the directory persists under.
const StorageKey = "professionals"

// Professional is one roster entry.
type Professional struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Active    bool   `json:"active"`
}

// Directory is the professional roster. Entries keep insertion order and
// every mutation mirrors the full roster to the document store.
type Directory struct {
	store    docstore.Store
	notifier notification.Notifier
	newID    func() string

	mu            sync.RWMutex
	professionals []Professional
}

// NewDirectory loads the persisted roster. An absent or unparseable
// document falls back to an empty roster.
func NewDirectory(ctx context.Context, store docstore.Store, notifier notification.Notifier) (*Directory, error) {
	d := &Directory{
		store:    store,
		notifier: notifier,
		newID:    func() string { return uuid.New().String() },
	}

	doc, err := store.Load(ctx, StorageKey)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load professionals: %w", err)
	default:
		if err := json.Unmarshal(doc, &d.professionals); err != nil {
			d.professionals = nil
		}
	}
	return d, nil
}

func (d *Directory) persist(ctx context.Context) error {
	snapshot := d.professionals
	if snapshot == nil {
		snapshot = []Professional{}
	}
	doc, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal professionals: %w", err)
	}
	return d.store.Save(ctx, StorageKey, doc)
}

// Add appends a new professional with a fresh id.
func (d *Directory) Add(ctx context.Context, name, specialty string, active bool) (Professional, error) {
	p := Professional{
		ID:        d.newID(),
		Name:      name,
		Specialty: specialty,
		Active:    active,
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.professionals = append(d.professionals, p)
	if err := d.persist(ctx); err != nil {
		d.professionals = d.professionals[:len(d.professionals)-1]
		return Professional{}, err
	}
	d.notifier.Success("Professional registered successfully")
	return p, nil
}

// Update replaces every field of the entry with the given id. An unknown id
// is a silent no-op that still reports success; callers that care should
// check the roster afterwards.
func (d *Directory) Update(ctx context.Context, id, name, specialty string, active bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	prev := make([]Professional, len(d.professionals))
	copy(prev, d.professionals)
	for i := range d.professionals {
		if d.professionals[i].ID == id {
			d.professionals[i] = Professional{ID: id, Name: name, Specialty: specialty, Active: active}
			break
		}
	}
	if err := d.persist(ctx); err != nil {
		d.professionals = prev
		return err
	}
	d.notifier.Success("Professional updated successfully")
	return nil
}

// Delete removes the entry with the given id if present. Visits that
// reference the id keep their snapshotted name; nothing cascades.
func (d *Directory) Delete(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	kept := d.professionals[:0:0]
	for _, p := range d.professionals {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	prev := d.professionals
	d.professionals = kept
	if err := d.persist(ctx); err != nil {
		d.professionals = prev
		return err
	}
	d.notifier.Success("Professional removed successfully")
	return nil
}

// Get returns the entry with the given id.
func (d *Directory) Get(_ context.Context, id string) (Professional, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, p := range d.professionals {
		if p.ID == id {
			return p, true
		}
	}
	return Professional{}, false
}

// List returns the full roster in insertion order.
func (d *Directory) List(_ context.Context) []Professional {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Professional, len(d.professionals))
	copy(out, d.professionals)
	return out
}

// ListActive returns only active entries, preserving relative order.
func (d *Directory) ListActive(_ context.Context) []Professional {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []Professional
	for _, p := range d.professionals {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}
