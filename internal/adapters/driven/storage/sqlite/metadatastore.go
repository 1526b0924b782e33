package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// metadataNamespace implements driven.MetadataNamespace over worker_metadata.
type metadataNamespace struct {
	store *Store
}

var _ driven.MetadataNamespace = (*metadataNamespace)(nil)

// Scope returns the metadata store of a worker.
func (n *metadataNamespace) Scope(workerID string) driven.MetadataStore {
	return &metadataStore{store: n.store, workerID: workerID}
}

// Delete removes a key from a worker's scope.
func (n *metadataNamespace) Delete(ctx context.Context, workerID, key string) error {
	_, err := n.store.db.ExecContext(ctx,
		"DELETE FROM worker_metadata WHERE worker_id = ? AND key = ?", workerID, key)
	if err != nil {
		return fmt.Errorf("deleting metadata: %w", err)
	}
	return nil
}

// metadataStore implements driven.MetadataStore for one worker.
type metadataStore struct {
	store    *Store
	workerID string
}

var _ driven.MetadataStore = (*metadataStore)(nil)

// Exists reports whether key is set.
func (s *metadataStore) Exists(ctx context.Context, key string) (bool, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM worker_metadata WHERE worker_id = ? AND key = ?",
		s.workerID, key).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking metadata: %w", err)
	}
	return count > 0, nil
}

// Get returns the value stored under key.
func (s *metadataStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.store.db.QueryRowContext(ctx,
		"SELECT value FROM worker_metadata WHERE worker_id = ? AND key = ?",
		s.workerID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading metadata: %w", err)
	}
	return value, nil
}

// Set stores or replaces the value under key.
func (s *metadataStore) Set(ctx context.Context, key, value string) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO worker_metadata (worker_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(worker_id, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, s.workerID, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving metadata: %w", err)
	}
	return nil
}
