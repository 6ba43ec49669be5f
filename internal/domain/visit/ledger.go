package visit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/homevisit/homevisit/internal/platform/docstore"
	"github.com/homevisit/homevisit/internal/platform/notification"
)

// StorageKey is the document key the ledger persists under.
const StorageKey = "visits"

// Ledger is the record of completed visits. All reads are served from
// memory; every mutation mirrors the full state to the document store
// before it is reported as done.
type Ledger struct {
	store    docstore.Store
	notifier notification.Notifier
	newID    func() string
	now      func() time.Time

	mu     sync.RWMutex
	visits []Visit
}

// NewLedger loads the persisted ledger. An absent or unparseable document
// falls back to an empty ledger rather than erroring.
func NewLedger(ctx context.Context, store docstore.Store, notifier notification.Notifier) (*Ledger, error) {
	l := &Ledger{
		store:    store,
		notifier: notifier,
		newID:    func() string { return uuid.New().String() },
		now:      time.Now,
	}

	doc, err := store.Load(ctx, StorageKey)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load visits: %w", err)
	default:
		if err := json.Unmarshal(doc, &l.visits); err != nil {
			l.visits = nil
		}
	}
	return l, nil
}

// persist mirrors the full in-memory state. Callers must hold the lock.
func (l *Ledger) persist(ctx context.Context) error {
	snapshot := l.visits
	if snapshot == nil {
		snapshot = []Visit{}
	}
	doc, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal visits: %w", err)
	}
	return l.store.Save(ctx, StorageKey, doc)
}

// Add assigns a fresh id, captures the patient's age as of today, appends
// the visit, and persists. The ledger itself performs no field validation.
func (l *Ledger) Add(ctx context.Context, v Visit) (Visit, error) {
	v.ID = l.newID()
	v.Age = AgeOn(v.BirthDate, DateOf(l.now()))

	l.mu.Lock()
	defer l.mu.Unlock()
	l.visits = append(l.visits, v)
	if err := l.persist(ctx); err != nil {
		l.visits = l.visits[:len(l.visits)-1]
		return Visit{}, err
	}
	l.notifier.Success("Visit recorded successfully")
	return v, nil
}

// Delete removes the visit with the given id if present. Deleting an
// unknown id is a no-op that still reports success, matching the behavior
// the care teams rely on when retrying a delete.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.visits[:0:0]
	for _, v := range l.visits {
		if v.ID != id {
			kept = append(kept, v)
		}
	}
	prev := l.visits
	l.visits = kept
	if err := l.persist(ctx); err != nil {
		l.visits = prev
		return err
	}
	l.notifier.Success("Visit deleted successfully")
	return nil
}

// List returns all visits in ledger (insertion) order.
func (l *Ledger) List(_ context.Context) []Visit {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Visit, len(l.visits))
	copy(out, l.visits)
	return out
}

// ListByPatient returns visits whose patient name contains the pattern,
// case-insensitively, in ledger order.
func (l *Ledger) ListByPatient(_ context.Context, pattern string) []Visit {
	needle := strings.ToLower(pattern)

	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Visit
	for _, v := range l.visits {
		if strings.Contains(strings.ToLower(v.PatientName), needle) {
			out = append(out, v)
		}
	}
	return out
}

// ListByDate returns visits whose visit date falls on the given calendar
// day, in ledger order.
func (l *Ledger) ListByDate(_ context.Context, day Date) []Visit {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Visit
	for _, v := range l.visits {
		if v.VisitDate.Equal(day) {
			out = append(out, v)
		}
	}
	return out
}

// ListPatients aggregates the ledger into one summary per distinct
// (name, birth date) pair. The key is exact: names differing only in case
// are distinct patients here, unlike the substring lookup above. Summaries
// come back in first-appearance order.
func (l *Ledger) ListPatients(_ context.Context) []PatientSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	index := make(map[string]int)
	var out []PatientSummary
	for _, v := range l.visits {
		key := v.PatientName + "|" + v.BirthDate.String()
		if i, ok := index[key]; ok {
			out[i].Visits++
			continue
		}
		index[key] = len(out)
		out = append(out, PatientSummary{
			Name:      v.PatientName,
			BirthDate: v.BirthDate,
			Visits:    1,
		})
	}
	return out
}

// SortByDateDesc orders visits most-recent-first for presentation. Ties
// keep their insertion order.
func SortByDateDesc(visits []Visit) {
	sort.SliceStable(visits, func(i, j int) bool {
		return visits[j].VisitDate.Before(visits[i].VisitDate)
	})
}
