package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// Ensure Runner implements the interface.
var _ driving.Runner = (*Runner)(nil)

// Runner hosts workers and drives each run through PRE, PROCESS, POST and DONE.
// Runs of different workers may proceed concurrently; a worker never has
// more than one run in flight.
type Runner struct {
	metadata driven.MetadataNamespace
	content  driven.ContentStore
	now      func() time.Time

	mu      sync.RWMutex
	order   []string
	workers map[string]registeredWorker
	active  map[string]domain.Phase
	last    map[string]*domain.RunResult
}

type registeredWorker struct {
	spec      domain.WorkerSpec
	worker    driving.Worker
	cursorKey string
}

// NewRunner creates a runner over the given stores.
func NewRunner(metadata driven.MetadataNamespace, content driven.ContentStore) *Runner {
	return &Runner{
		metadata: metadata,
		content:  content,
		now:      time.Now,
		workers:  make(map[string]registeredWorker),
		active:   make(map[string]domain.Phase),
		last:     make(map[string]*domain.RunResult),
	}
}

// Register adds a worker. Worker IDs must be unique.
func (r *Runner) Register(spec domain.WorkerSpec, worker driving.Worker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := worker.ID()
	if _, exists := r.workers[id]; exists {
		return fmt.Errorf("%w: worker %s registered twice", domain.ErrInvalidInput, id)
	}
	key := domain.CursorKey
	if keyed, ok := worker.(driving.CursorKeyed); ok && keyed.CursorKey() != "" {
		key = keyed.CursorKey()
	}
	r.workers[id] = registeredWorker{spec: spec, worker: worker, cursorKey: key}
	r.order = append(r.order, id)
	return nil
}

// CursorKey returns the metadata key a worker stores its cursor under.
// Unknown workers get domain.CursorKey.
func (r *Runner) CursorKey(workerID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rw, ok := r.workers[workerID]; ok {
		return rw.cursorKey
	}
	return domain.CursorKey
}

// Workers lists the registered workers in registration order.
func (r *Runner) Workers() []driving.WorkerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]driving.WorkerInfo, 0, len(r.order))
	for _, id := range r.order {
		rw := r.workers[id]
		infos = append(infos, driving.WorkerInfo{
			ID:       id,
			Identity: rw.worker.Identity(),
			Spec:     rw.spec,
		})
	}
	return infos
}

// Run executes one run of a worker.
//
//nolint:gocyclo // Lifecycle function with necessary sequential phases
func (r *Runner) Run(ctx context.Context, workerID string) (*domain.RunResult, error) {
	r.mu.RLock()
	rw, ok := r.workers[workerID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: worker %s", domain.ErrNotFound, workerID)
	}

	if !r.begin(workerID) {
		return nil, fmt.Errorf("%w: %s", domain.ErrRunInProgress, workerID)
	}

	w := rw.worker
	result := &domain.RunResult{
		RunID:     uuid.NewString(),
		WorkerID:  workerID,
		Identity:  w.Identity(),
		Phase:     domain.PhasePre,
		StartedAt: r.now(),
	}
	defer r.end(workerID, result)

	log := logger.For(workerID, string(w.Identity())).With().Str("run_id", result.RunID).Logger()
	wc := &workContext{
		logger:    &log,
		metadata:  r.metadata.Scope(workerID),
		content:   r.content,
		cursorKey: rw.cursorKey,
	}
	result.CursorBefore = r.readCursor(ctx, wc)

	// PRE
	log.Debug().Msg("Entering pre phase")
	gw, err := w.PreWork(ctx, wc)
	if err != nil {
		return r.fail(ctx, wc, result, domain.PhasePre, err)
	}
	defer func() {
		if cerr := gw.Close(); cerr != nil {
			log.Debug().Err(cerr).Msg("Failed to close upstream handle")
		}
	}()

	// PROCESS
	r.setPhase(workerID, domain.PhaseProcess)
	result.Phase = domain.PhaseProcess
	log.Debug().Msg("Entering process phase")
	batch, err := w.Process(ctx, wc, gw)
	if err != nil {
		return r.fail(ctx, wc, result, domain.PhaseProcess, err)
	}
	result.Batch = batch

	if batch.Skipped {
		return r.finish(ctx, wc, result, domain.OutcomeSkipped), nil
	}

	if len(batch.Documents) > 0 {
		ingestedAt := r.now()
		for i := range batch.Documents {
			batch.Documents[i].IngestedAt = ingestedAt
		}
		if err := r.content.SaveDocuments(ctx, batch.Documents); err != nil {
			return r.fail(ctx, wc, result, domain.PhaseProcess, fmt.Errorf("save documents: %w", err))
		}
	}

	// POST
	r.setPhase(workerID, domain.PhasePost)
	result.Phase = domain.PhasePost
	log.Debug().Msg("Entering post phase")
	if err := w.PostProcess(ctx, wc, gw, batch.Documents); err != nil {
		return r.fail(ctx, wc, result, domain.PhasePost, err)
	}

	return r.finish(ctx, wc, result, domain.OutcomeOK), nil
}

// RunAll executes one run of every enabled worker concurrently.
// Results are returned in registration order.
func (r *Runner) RunAll(ctx context.Context) ([]*domain.RunResult, error) {
	var ids []string
	for _, info := range r.Workers() {
		if info.Spec.Enabled {
			ids = append(ids, info.ID)
		}
	}

	results := make([]*domain.RunResult, len(ids))
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			results[i], errs[i] = r.Run(ctx, id)
		}(i, id)
	}
	wg.Wait()

	var joined []error
	for i, err := range errs {
		if err != nil {
			joined = append(joined, fmt.Errorf("run %s: %w", ids[i], err))
		}
	}
	if len(joined) > 0 {
		return results, errors.Join(joined...)
	}
	return results, nil
}

// Status returns the run status of a worker.
func (r *Runner) Status(_ context.Context, workerID string) (*driving.RunStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.workers[workerID]; !ok {
		return nil, fmt.Errorf("%w: worker %s", domain.ErrNotFound, workerID)
	}

	status := &driving.RunStatus{WorkerID: workerID}
	if phase, running := r.active[workerID]; running {
		status.Running = true
		status.Phase = phase
	}
	if last, ok := r.last[workerID]; ok {
		// Return a copy to avoid race conditions
		copied := *last
		status.LastResult = &copied
	}
	return status, nil
}

// fail ends a run fatally in phase.
func (r *Runner) fail(
	ctx context.Context,
	wc *workContext,
	result *domain.RunResult,
	phase domain.Phase,
	err error,
) (*domain.RunResult, error) {
	runErr := &domain.RunError{
		WorkerID: result.WorkerID,
		Identity: result.Identity,
		Phase:    phase,
		Err:      err,
	}
	result.Phase = phase
	result.Outcome = domain.OutcomeFailed
	result.Err = runErr
	result.EndedAt = r.now()
	result.CursorAfter = r.readCursor(ctx, wc)

	wc.logger.Error().Err(err).Str("phase", phase.String()).Msg("Run failed")
	return result, runErr
}

// finish ends a run that reached DONE.
func (r *Runner) finish(
	ctx context.Context,
	wc *workContext,
	result *domain.RunResult,
	outcome domain.Outcome,
) *domain.RunResult {
	result.Phase = domain.PhaseDone
	result.Outcome = outcome
	result.EndedAt = r.now()
	result.CursorAfter = r.readCursor(ctx, wc)

	event := wc.logger.Info().
		Str("outcome", outcome.String()).
		Int("documents", result.DocumentCount()).
		Str("cursor_before", result.CursorBefore).
		Str("cursor_after", result.CursorAfter).
		Dur("elapsed", result.EndedAt.Sub(result.StartedAt))
	if result.Batch != nil && !result.Batch.Skipped {
		event = event.Stringer("window", result.Batch.Window)
	}
	event.Msg("Run complete")
	return result
}

// readCursor returns the raw stored cursor, or "" when absent or unreadable.
func (r *Runner) readCursor(ctx context.Context, wc *workContext) string {
	value, err := wc.metadata.Get(ctx, wc.cursorKey)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			wc.logger.Debug().Err(err).Msg("Failed to read cursor for reporting")
		}
		return ""
	}
	return value
}

// begin marks a worker as running. It returns false if it already is.
func (r *Runner) begin(workerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, running := r.active[workerID]; running {
		return false
	}
	r.active[workerID] = domain.PhasePre
	return true
}

// setPhase records the current phase of a running worker.
func (r *Runner) setPhase(workerID string, phase domain.Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[workerID] = phase
}

// end clears the running state and keeps the result.
func (r *Runner) end(workerID string, result *domain.RunResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, workerID)
	r.last[workerID] = result
}

// workContext is the WorkContext handed to workers for one run.
type workContext struct {
	logger    *zerolog.Logger
	metadata  driven.MetadataStore
	content   driven.ContentStore
	cursorKey string
}

func (c *workContext) Logger() *zerolog.Logger             { return c.logger }
func (c *workContext) MetadataStore() driven.MetadataStore { return c.metadata }
func (c *workContext) ContentStore() driven.ContentStore   { return c.content }
