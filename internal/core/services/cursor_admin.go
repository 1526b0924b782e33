package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// Ensure CursorAdmin implements the interface.
var _ driving.CursorAdmin = (*CursorAdmin)(nil)

// CursorKeys resolves the metadata key a worker stores its cursor under.
type CursorKeys interface {
	CursorKey(workerID string) string
}

// CursorAdmin provides operator access to stored cursors.
type CursorAdmin struct {
	metadata driven.MetadataNamespace
	keys     CursorKeys
}

// NewCursorAdmin creates a cursor admin service. A nil keys uses
// domain.CursorKey for every worker.
func NewCursorAdmin(metadata driven.MetadataNamespace, keys CursorKeys) *CursorAdmin {
	return &CursorAdmin{metadata: metadata, keys: keys}
}

func (a *CursorAdmin) cursorKey(workerID string) string {
	if a.keys == nil {
		return domain.CursorKey
	}
	return a.keys.CursorKey(workerID)
}

// Show returns the stored cursor and whether one exists.
func (a *CursorAdmin) Show(ctx context.Context, workerID string) (string, bool, error) {
	value, err := a.metadata.Scope(workerID).Get(ctx, a.cursorKey(workerID))
	if errors.Is(err, domain.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read cursor: %w", err)
	}
	return value, true, nil
}

// Set stores a cursor, refusing regressions unless forced.
func (a *CursorAdmin) Set(ctx context.Context, workerID, value string, force bool) error {
	next, err := domain.ParseCursor(value)
	if err != nil {
		return err
	}

	store := a.metadata.Scope(workerID)
	current, ok, err := a.Show(ctx, workerID)
	if err != nil {
		return err
	}
	if ok && !force {
		if stored, perr := domain.ParseCursor(current); perr == nil && next < stored {
			return fmt.Errorf("%w: %s is behind stored cursor %s", domain.ErrCursorRegression, next, stored)
		}
	}

	if err := store.Set(ctx, a.cursorKey(workerID), next.String()); err != nil {
		return fmt.Errorf("store cursor: %w", err)
	}
	logger.Info("Cursor for %s set to %s", workerID, next)
	return nil
}

// Reset removes the stored cursor.
func (a *CursorAdmin) Reset(ctx context.Context, workerID string) error {
	if err := a.metadata.Delete(ctx, workerID, a.cursorKey(workerID)); err != nil {
		return fmt.Errorf("delete cursor: %w", err)
	}
	logger.Info("Cursor for %s reset", workerID)
	return nil
}
