// Package docstore provides whole-document key-value persistence for the
// home-visit platform. Each key maps to a single JSON document that is
// replaced in full on every save. It defines the Store interface, an
// in-memory implementation suitable for testing and development, a
// file-backed implementation, and a Postgres implementation.
package docstore

import (
	"context"
	"errors"
	"sync"
)

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	ErrNotFound   = errors.New("document not found")
	ErrEmptyKey   = errors.New("document key is required")
	ErrInvalidKey = errors.New("document key contains invalid characters")
)

// ---------------------------------------------------------------------------
// Store interface
// ---------------------------------------------------------------------------

// Store is the contract for document storage backends. Save fully replaces
// the prior value for the key; there are no partial or merge semantics.
// The store is type-agnostic: callers own (de)serialization of their
// documents, including date-typed fields.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, doc []byte) error
	Delete(ctx context.Context, key string) error
}

// ---------------------------------------------------------------------------
// In-memory implementation
// ---------------------------------------------------------------------------

// MemStore is a thread-safe, in-memory Store for testing/dev.
type MemStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemStore returns a ready-to-use MemStore.
func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[string][]byte)}
}

// Load returns the document stored under key, or ErrNotFound.
func (s *MemStore) Load(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(doc))
	copy(out, doc)
	return out, nil
}

// Save replaces the document stored under key.
func (s *MemStore) Save(_ context.Context, key string, doc []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	stored := make([]byte, len(doc))
	copy(stored, doc)
	s.mu.Lock()
	s.docs[key] = stored
	s.mu.Unlock()
	return nil
}

// Delete removes the document under key. Deleting an absent key is a no-op.
func (s *MemStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	delete(s.docs, key)
	s.mu.Unlock()
	return nil
}
