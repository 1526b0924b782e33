package driven

import (
	"context"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// Gateway is an authenticated handle onto one upstream.
// A Gateway is obtained during the PRE phase and used only for that run.
type Gateway interface {
	// FetchRecent returns up to limit of the most recent items for identity.
	// Errors wrapping domain.ErrUnauthorized mark the identity as inaccessible.
	FetchRecent(ctx context.Context, identity domain.Identity, limit int) ([]domain.Item, error)

	// FetchSince returns up to limit items strictly newer than cursor.
	FetchSince(ctx context.Context, identity domain.Identity, cursor domain.Cursor, limit int) ([]domain.Item, error)

	// Probe reports whether the item at cursor still resolves upstream.
	// (false, nil) means the cursor is definitely stale; a non-nil error
	// means the lookup itself failed.
	Probe(ctx context.Context, cursor domain.Cursor) (bool, error)

	// Close releases resources held by the handle.
	Close() error
}

// Dialer authenticates against an upstream and returns a Gateway.
type Dialer interface {
	Dial(ctx context.Context) (Gateway, error)
}
