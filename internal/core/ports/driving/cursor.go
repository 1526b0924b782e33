package driving

import "context"

// CursorAdmin inspects and overrides stored worker cursors.
type CursorAdmin interface {
	// Show returns the stored cursor and whether one exists.
	Show(ctx context.Context, workerID string) (string, bool, error)

	// Set stores a cursor. Values behind the stored cursor are rejected
	// with domain.ErrCursorRegression unless force is true.
	Set(ctx context.Context, workerID, value string, force bool) error

	// Reset removes the stored cursor so the next run bootstraps again.
	Reset(ctx context.Context, workerID string) error
}
