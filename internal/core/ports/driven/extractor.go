package driven

import (
	"context"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// Extractor converts upstream items into documents.
// Each concrete source provides its own implementation.
type Extractor interface {
	// ExtractFragments converts one item into zero or more fragments.
	ExtractFragments(ctx context.Context, item domain.Item) ([]domain.Fragment, error)

	// FragmentsToDocuments converts fragments into zero or more documents.
	FragmentsToDocuments(ctx context.Context, fragments []domain.Fragment) ([]domain.Document, error)

	// DocumentIdentifier returns the identifier that becomes the next cursor
	// when doc is the newest document of a run.
	DocumentIdentifier(doc domain.Document) string

	// DocumentTimestamp returns the document creation time in seconds.
	DocumentTimestamp(doc domain.Document) int64
}
