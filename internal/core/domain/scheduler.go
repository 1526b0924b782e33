package domain

import "time"

// ScheduledTask represents a recurring worker run.
// The task ID is the worker ID.
type ScheduledTask struct {
	// ID is the unique identifier for the task.
	ID string

	// Name is a human-readable name for the task.
	Name string

	// Interval defines how often the task should run.
	Interval time.Duration

	// LastRun is when the task last ran.
	LastRun time.Time

	// NextRun is when the task should run next.
	NextRun time.Time

	// LastError contains the last error message, if any.
	LastError string

	// LastSuccess is when the task last completed successfully.
	LastSuccess time.Time

	// Enabled indicates whether the task is active.
	Enabled bool
}

// TaskResult represents the outcome of a task execution.
type TaskResult struct {
	// TaskID identifies which task was run.
	TaskID string

	// RunID links the result to the worker run.
	RunID string

	// StartedAt is when the task started.
	StartedAt time.Time

	// EndedAt is when the task completed.
	EndedAt time.Time

	// Success indicates whether the task completed without error.
	// Skipped runs count as successful.
	Success bool

	// Outcome is the run outcome name.
	Outcome string

	// Error contains the error message if Success is false.
	Error string

	// ItemsProcessed is the number of documents produced.
	ItemsProcessed int
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// Tick is how often due tasks are checked.
	Tick time.Duration

	// DefaultInterval applies to workers without their own interval.
	DefaultInterval time.Duration

	// HistoryRetention is the number of results kept per task.
	HistoryRetention int
}

// DefaultSchedulerConfig returns sensible defaults for the scheduler.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:          true,
		Tick:             1 * time.Minute,
		DefaultInterval:  15 * time.Minute,
		HistoryRetention: 100,
	}
}

// IntervalFor returns the effective interval for a worker.
func (c SchedulerConfig) IntervalFor(spec WorkerSpec) time.Duration {
	if spec.Interval > 0 {
		return spec.Interval
	}
	if c.DefaultInterval > 0 {
		return c.DefaultInterval
	}
	return DefaultSchedulerConfig().DefaultInterval
}
