package domain

import (
	"fmt"
	"time"
)

// Phase is a state of the worker lifecycle.
type Phase int

const (
	PhasePre Phase = iota
	PhaseProcess
	PhasePost
	PhaseDone
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhasePre:
		return "pre"
	case PhaseProcess:
		return "process"
	case PhasePost:
		return "post"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Outcome is how a run ended.
type Outcome int

const (
	// OutcomeOK means every phase completed.
	OutcomeOK Outcome = iota

	// OutcomeSkipped means the identity was inaccessible and the run did nothing.
	OutcomeSkipped

	// OutcomeFailed means a phase failed fatally.
	OutcomeFailed
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Batch is the output of the process phase.
type Batch struct {
	// Skipped is set when the availability probe reported the identity as
	// inaccessible. Skipped batches carry no documents.
	Skipped bool

	// Window is the fetch window that was used.
	Window FetchWindow

	// Bootstrapped is set when this run established the initial cursor.
	Bootstrapped bool

	// ItemsFetched is the number of items returned by the fetch window.
	ItemsFetched int

	// ExtractionFailures counts items whose extraction failed.
	ExtractionFailures int

	// Documents is the accumulated output of all items.
	Documents []Document
}

// RunError is a fatal run failure with enough context for the host to decide
// whether to retry the run later.
type RunError struct {
	WorkerID string
	Identity Identity
	Phase    Phase
	Err      error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("worker %s (%s) failed in %s: %v", e.WorkerID, e.Identity, e.Phase, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// RunResult reports one worker invocation.
type RunResult struct {
	// RunID uniquely identifies the run.
	RunID string

	// WorkerID identifies the worker.
	WorkerID string

	// Identity is the worker's polling target.
	Identity Identity

	// Outcome is how the run ended.
	Outcome Outcome

	// Phase is the last phase entered. PhaseDone unless the run failed.
	Phase Phase

	// Batch is the process-phase output, nil if PROCESS did not complete.
	Batch *Batch

	// CursorBefore and CursorAfter are the stored cursor around the run.
	// Either may be empty when no cursor was stored.
	CursorBefore string
	CursorAfter  string

	// Err is set when Outcome is OutcomeFailed.
	Err error

	StartedAt time.Time
	EndedAt   time.Time
}

// DocumentCount returns the number of documents the run produced.
func (r *RunResult) DocumentCount() int {
	if r == nil || r.Batch == nil {
		return 0
	}
	return len(r.Batch.Documents)
}
