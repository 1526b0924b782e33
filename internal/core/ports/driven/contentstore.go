package driven

import (
	"context"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// ContentStore persists finished documents.
type ContentStore interface {
	// SaveDocuments stores or updates documents, keyed by ID.
	SaveDocuments(ctx context.Context, docs []domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if absent.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns up to limit documents for a worker, newest first.
	// A limit of zero or less returns all documents.
	ListDocuments(ctx context.Context, workerID string, limit int) ([]domain.Document, error)

	// CountDocuments returns the number of documents stored for a worker.
	CountDocuments(ctx context.Context, workerID string) (int, error)
}
