package driving

import (
	"context"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// DocumentService reads the documents workers have produced.
type DocumentService interface {
	// List returns up to limit documents of a worker, newest first.
	// A limit of zero or less returns all documents.
	List(ctx context.Context, workerID string, limit int) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// Count returns the number of documents stored for a worker.
	Count(ctx context.Context, workerID string) (int, error)
}
