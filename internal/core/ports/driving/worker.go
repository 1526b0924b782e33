package driving

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// WorkContext is the per-run environment a host hands to a worker.
// The host owns every handle it exposes.
type WorkContext interface {
	// Logger returns a logger scoped to the worker and run.
	Logger() *zerolog.Logger

	// MetadataStore returns the worker-scoped metadata store.
	MetadataStore() driven.MetadataStore

	// ContentStore returns the document sink.
	ContentStore() driven.ContentStore
}

// Worker is the three-phase contract a host invokes once per run.
type Worker interface {
	// ID returns the worker identifier that namespaces its metadata.
	ID() string

	// Identity returns the polling target.
	Identity() domain.Identity

	// PreWork acquires the per-run upstream handle.
	PreWork(ctx context.Context, wc WorkContext) (driven.Gateway, error)

	// Process fetches new items and converts them into documents.
	// A skipped batch means the identity is inaccessible; it is not an error.
	Process(ctx context.Context, wc WorkContext, gw driven.Gateway) (*domain.Batch, error)

	// PostProcess advances the stored cursor from the processed documents.
	PostProcess(ctx context.Context, wc WorkContext, gw driven.Gateway, docs []domain.Document) error
}

// CursorKeyed is implemented by workers whose cursor is stored under a key
// other than domain.CursorKey.
type CursorKeyed interface {
	CursorKey() string
}
