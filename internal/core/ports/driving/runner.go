package driving

import (
	"context"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// Runner hosts workers and drives their lifecycle.
type Runner interface {
	// Run executes one run of a worker.
	// Fatal failures are returned both as the error and in the result.
	Run(ctx context.Context, workerID string) (*domain.RunResult, error)

	// RunAll executes one run of every enabled worker.
	RunAll(ctx context.Context) ([]*domain.RunResult, error)

	// Status returns the run status of a worker.
	Status(ctx context.Context, workerID string) (*RunStatus, error)

	// Workers lists the registered workers.
	Workers() []WorkerInfo
}

// RunStatus represents the current state of a worker.
type RunStatus struct {
	// WorkerID identifies the worker.
	WorkerID string

	// Running indicates if a run is currently in progress.
	Running bool

	// Phase is the current lifecycle phase of a running worker.
	Phase domain.Phase

	// LastResult is the most recent completed run, nil if none.
	LastResult *domain.RunResult
}

// WorkerInfo describes a registered worker.
type WorkerInfo struct {
	ID       string
	Identity domain.Identity
	Spec     domain.WorkerSpec
}
