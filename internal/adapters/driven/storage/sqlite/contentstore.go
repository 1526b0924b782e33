package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// contentStore implements driven.ContentStore.
type contentStore struct {
	store *Store
}

var _ driven.ContentStore = (*contentStore)(nil)

const documentColumns = `id, worker_id, identity, item_ordinal, uri, kind, title, metadata, created_at, ingested_at`

// jsonNull is how an empty metadata map round-trips through the metadata column.
const jsonNull = "null"

// SaveDocuments stores or updates documents in one transaction.
func (s *contentStore) SaveDocuments(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			worker_id = excluded.worker_id,
			identity = excluded.identity,
			item_ordinal = excluded.item_ordinal,
			uri = excluded.uri,
			kind = excluded.kind,
			title = excluded.title,
			metadata = excluded.metadata,
			created_at = excluded.created_at,
			ingested_at = excluded.ingested_at
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range docs {
		doc := &docs[i]
		if doc.ID == "" {
			return fmt.Errorf("%w: document without ID", domain.ErrInvalidInput)
		}

		metadataJSON, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, doc.ID, doc.WorkerID, string(doc.Identity), doc.ItemOrdinal,
			doc.URI, string(doc.Kind), doc.Title, string(metadataJSON),
			formatTime(doc.CreatedAt), formatTime(doc.IngestedAt)); err != nil {
			return fmt.Errorf("saving document %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *contentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return doc, err
}

// ListDocuments returns documents of a worker, newest first.
func (s *contentStore) ListDocuments(ctx context.Context, workerID string, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE worker_id = ?
		ORDER BY created_at DESC, item_ordinal DESC, id DESC
		LIMIT ?
	`, workerID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// CountDocuments returns the number of documents of a worker.
func (s *contentStore) CountDocuments(ctx context.Context, workerID string) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE worker_id = ?", workerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// scanDocument scans one document row.
func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var identity, kind, metadataJSON, createdAt, ingestedAt string

	if err := row.Scan(&doc.ID, &doc.WorkerID, &identity, &doc.ItemOrdinal, &doc.URI,
		&kind, &doc.Title, &metadataJSON, &createdAt, &ingestedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Identity = domain.Identity(identity)
	doc.Kind = domain.MediaKind(kind)
	doc.CreatedAt = parseTime(createdAt)
	doc.IngestedAt = parseTime(ingestedAt)

	if metadataJSON != "" && metadataJSON != jsonNull {
		if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	return &doc, nil
}

// timeLayout sorts lexically in chronological order for UTC values.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime formats t in UTC with fixed-width fractional seconds.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses a value written by formatTime. Invalid values yield zero time.
func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
