// Package logger provides structured logging for sercha-ingest.
// Messages go through a shared zerolog logger written to stderr. Debug
// messages are only emitted when verbose mode is enabled via the --verbose flag.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Output formats accepted by ParseFormat.
const (
	FormatAuto    = "auto"
	FormatJSON    = "json"
	FormatConsole = "console"
)

var (
	mu      sync.RWMutex
	verbose bool
	pretty  bool
	output  io.Writer = os.Stderr
	base              = build()
)

// build creates the shared logger from the current settings.
// Callers must hold mu for writing, except during package init.
func build() zerolog.Logger {
	w := output
	if pretty {
		w = zerolog.ConsoleWriter{Out: output, NoColor: true, TimeFormat: time.RFC3339}
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// SetVerbose enables or disables debug logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	base = build()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetPretty switches between JSON lines (false) and human-readable console output (true).
func SetPretty(p bool) {
	mu.Lock()
	defer mu.Unlock()
	pretty = p
	base = build()
}

// ParseFormat reports whether format selects console output for w.
// FormatAuto picks console output when w is a terminal.
func ParseFormat(format string, w io.Writer) (bool, error) {
	switch format {
	case FormatJSON:
		return false, nil
	case FormatConsole:
		return true, nil
	case FormatAuto, "":
		return IsTerminal(w), nil
	default:
		return false, fmt.Errorf("unknown log format %q", format)
	}
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	base = build()
}

// Get returns a copy of the shared logger.
func Get() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := base
	return &l
}

// For returns a logger tagged with a worker ID and identity.
func For(workerID, identity string) *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := base.With().Str("worker", workerID).Str("identity", identity).Logger()
	return &l
}

// Debug logs a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	Get().Debug().Msgf(format, args...)
}

// Section logs a section header if verbose mode is enabled.
func Section(name string) {
	Get().Debug().Msgf("=== %s ===", name)
}

// Info logs an informational message.
func Info(format string, args ...any) {
	Get().Info().Msgf(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...any) {
	Get().Warn().Msgf(format, args...)
}

// Error logs an error message.
func Error(format string, args ...any) {
	Get().Error().Msgf(format, args...)
}
