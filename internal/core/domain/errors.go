package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown worker or connector type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrRunInProgress indicates a run for the same worker is already active.
	ErrRunInProgress = errors.New("run in progress")

	// Upstream Errors.

	// ErrUnauthorized indicates the identity is not accessible with the
	// configured credentials. Runs hitting it are skipped, not failed.
	ErrUnauthorized = errors.New("not authorized")

	// ErrRateLimited indicates the upstream rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrUpstream indicates any other upstream failure.
	ErrUpstream = errors.New("upstream error")

	// Cursor Errors.

	// ErrInvalidCursor indicates a stored or computed cursor is not a valid ordinal.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrCursorRegression indicates an attempt to move a cursor backwards.
	ErrCursorRegression = errors.New("cursor regression")

	// ErrBootstrapEmpty indicates the upstream returned no items while a
	// cursor was being bootstrapped.
	ErrBootstrapEmpty = errors.New("cannot bootstrap cursor: upstream returned no items")
)
