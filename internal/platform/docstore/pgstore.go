package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore keeps each document as a jsonb row in a single table. It honors
// the same full-replace contract as the other backends: an upsert per key.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore ensures the documents table exists and returns a PGStore.
func NewPGStore(ctx context.Context, pool *pgxpool.Pool) (*PGStore, error) {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			key        TEXT PRIMARY KEY,
			doc        JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return nil, fmt.Errorf("ensure documents table: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

// Load returns the document stored under key, or ErrNotFound.
func (s *PGStore) Load(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM documents WHERE key = $1`, key).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load document %q: %w", key, err)
	}
	return doc, nil
}

// Save replaces the document stored under key.
func (s *PGStore) Save(ctx context.Context, key string, doc []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (key, doc) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`,
		key, doc)
	if err != nil {
		return fmt.Errorf("save document %q: %w", key, err)
	}
	return nil
}

// Delete removes the document under key. Deleting an absent key is a no-op.
func (s *PGStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete document %q: %w", key, err)
	}
	return nil
}
