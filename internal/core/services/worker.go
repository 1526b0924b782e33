package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
)

// Ensure PollWorker implements the interface.
var _ driving.Worker = (*PollWorker)(nil)

// PollWorker is a pull-based worker: it dials an upstream, collects new
// items through a CursorProtocol and advances the cursor afterwards.
type PollWorker struct {
	id       string
	identity domain.Identity
	dialer   driven.Dialer
	protocol *CursorProtocol
}

// NewPollWorker creates a worker for spec. Credentials live in the dialer.
func NewPollWorker(
	spec domain.WorkerSpec,
	dialer driven.Dialer,
	extractor driven.Extractor,
	opts ...CursorOption,
) *PollWorker {
	if spec.PageSize > 0 {
		opts = append([]CursorOption{WithPageSize(spec.PageSize)}, opts...)
	}
	return &PollWorker{
		id:       spec.WorkerID(),
		identity: spec.Identity,
		dialer:   dialer,
		protocol: NewCursorProtocol(spec.Identity, extractor, opts...),
	}
}

// ID returns the worker identifier.
func (w *PollWorker) ID() string {
	return w.id
}

// Identity returns the polling target.
func (w *PollWorker) Identity() domain.Identity {
	return w.identity
}

// Protocol returns the worker's cursor protocol.
func (w *PollWorker) Protocol() *CursorProtocol {
	return w.protocol
}

// CursorKey returns the metadata key the worker's cursor is stored under.
func (w *PollWorker) CursorKey() string {
	return w.protocol.CursorKey()
}

// PreWork authenticates against the upstream.
func (w *PollWorker) PreWork(ctx context.Context, wc driving.WorkContext) (driven.Gateway, error) {
	gw, err := w.dialer.Dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("dial upstream: %w", err)
	}
	wc.Logger().Debug().Msg("Upstream handle acquired")
	return gw, nil
}

// Process collects new documents.
func (w *PollWorker) Process(ctx context.Context, wc driving.WorkContext, gw driven.Gateway) (*domain.Batch, error) {
	batch, err := w.protocol.Collect(ctx, wc, gw)
	if err != nil {
		return nil, err
	}
	for i := range batch.Documents {
		batch.Documents[i].WorkerID = w.id
	}
	return batch, nil
}

// PostProcess advances the cursor from the processed documents.
func (w *PollWorker) PostProcess(
	ctx context.Context,
	wc driving.WorkContext,
	_ driven.Gateway,
	docs []domain.Document,
) error {
	_, _, err := w.protocol.Advance(ctx, wc, docs)
	return err
}
