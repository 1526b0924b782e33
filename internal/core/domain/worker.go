package domain

import (
	"fmt"
	"strings"
	"time"
)

// WorkerTypeTwitterImage is the worker type of the bundled Twitter media scraper.
const WorkerTypeTwitterImage = "twitter_image_scraper"

// Worker option keys understood by the bundled workers.
const (
	// OptionMediaKinds is a comma-separated list of media kinds to keep.
	OptionMediaKinds = "media_kinds"

	// OptionIncludeRetweets is "true" to extract media from retweets.
	OptionIncludeRetweets = "include_retweets"
)

// WorkerSpec describes one configured polling worker.
type WorkerSpec struct {
	// Type identifies the worker implementation.
	Type string

	// Identity is the polling target.
	Identity Identity

	// Enabled indicates whether the worker is scheduled and included in "run all".
	Enabled bool

	// Interval is how often the scheduler fires the worker.
	// Zero means the scheduler default.
	Interval time.Duration

	// PageSize overrides the fetch page size. Zero means MaxPageSize.
	PageSize int

	// Options contains worker-type specific settings.
	Options map[string]string
}

// WorkerID returns the worker identifier, e.g. "twitter_image_scraper.acct1".
// It namespaces the worker's metadata.
func (s WorkerSpec) WorkerID() string {
	return WorkerID(s.Type, s.Identity)
}

// WorkerID builds a worker identifier from a type and identity.
func WorkerID(workerType string, identity Identity) string {
	return fmt.Sprintf("%s.%s", workerType, identity)
}

// Validate checks the spec for missing or out-of-range fields.
func (s WorkerSpec) Validate() error {
	if strings.TrimSpace(s.Type) == "" {
		return fmt.Errorf("%w: worker type is required", ErrInvalidInput)
	}
	if strings.TrimSpace(string(s.Identity)) == "" {
		return fmt.Errorf("%w: worker identity is required", ErrInvalidInput)
	}
	if s.PageSize < 0 || s.PageSize > MaxPageSize {
		return fmt.Errorf("%w: page size must be between 1 and %d", ErrInvalidInput, MaxPageSize)
	}
	if s.Interval < 0 {
		return fmt.Errorf("%w: interval must not be negative", ErrInvalidInput)
	}
	return nil
}
