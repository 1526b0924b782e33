package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// CursorKey is the metadata key under which a worker stores its cursor.
const CursorKey = "since_id"

// MaxPageSize is the largest number of items the upstream returns in one call.
// A run that sees more new items than this within one interval misses the excess.
const MaxPageSize = 200

// Cursor is the ordinal of the most recent item already processed.
// Cursors are totally ordered and must never move backwards.
type Cursor int64

// ParseCursor parses a stored cursor value.
func ParseCursor(s string) (Cursor, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCursor, s)
	}
	return Cursor(v), nil
}

// String returns the decimal form used for storage.
func (c Cursor) String() string {
	return strconv.FormatInt(int64(c), 10)
}

// WindowMode selects how a run fetches items.
type WindowMode int

const (
	// WindowSince fetches items strictly newer than a live cursor.
	WindowSince WindowMode = iota

	// WindowRecent fetches the most recent items regardless of cursor.
	WindowRecent
)

// String returns the mode name.
func (m WindowMode) String() string {
	switch m {
	case WindowSince:
		return "since"
	case WindowRecent:
		return "recent"
	default:
		return "unknown"
	}
}

// FetchWindow is the fetch decision made for one run.
type FetchWindow struct {
	// Mode is since-cursor or most-recent.
	Mode WindowMode

	// Cursor is the lower bound for WindowSince, and the stale cursor for WindowRecent.
	Cursor Cursor

	// Limit is the page size requested.
	Limit int
}

// String renders the window as it would be called, e.g. since(500, 200).
func (w FetchWindow) String() string {
	if w.Mode == WindowSince {
		return fmt.Sprintf("since(%d, %d)", w.Cursor, w.Limit)
	}
	return fmt.Sprintf("recent(%d)", w.Limit)
}
