package driving

import "context"

// Scheduler fires every enabled worker on its configured interval.
type Scheduler interface {
	// Start runs one timer loop per worker and returns once ctx is done or
	// Stop is called. Ticks for a worker whose previous run is still in
	// flight are dropped.
	Start(ctx context.Context) error

	// Stop signals every loop to exit and waits for in-flight runs.
	Stop() error
}
