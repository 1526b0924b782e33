// Package cli provides the cobra command tree of sercha-ingest.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services collects the driving ports the commands use.
type Services struct {
	Runner    driving.Runner
	Scheduler driving.Scheduler
	Cursors   driving.CursorAdmin
	Documents driving.DocumentService

	// Close releases the resources behind the services.
	Close func() error
}

// Factory builds services from the configuration file at configPath.
// An empty path selects the default location.
type Factory func(ctx context.Context, configPath string) (*Services, error)

// Services used by the commands. Populated by the root command before any
// subcommand runs.
var (
	runner          driving.Runner
	scheduler       driving.Scheduler
	cursorAdmin     driving.CursorAdmin
	documentService driving.DocumentService
	closeServices   func() error

	factory Factory
)

// Global flags.
var (
	configPath string
	verbose    bool
	logFormat  string
)

// skipServicesAnnotation marks commands that do not need configured services.
const skipServicesAnnotation = "skip-services"

var rootCmd = &cobra.Command{
	Use:   "sercha-ingest",
	Short: "Incremental media ingestion from polled upstreams",
	Long: `sercha-ingest polls upstream accounts for new items, extracts media
documents from them and tracks a per-worker cursor so every run only
fetches what is new.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadServices,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.sercha-ingest/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logger.FormatAuto, "Log output: auto, json or console")
}

// Execute runs the root command with services built by f.
func Execute(f Factory) error {
	factory = f
	err := rootCmd.Execute()
	if closeServices != nil {
		if cerr := closeServices(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		closeServices = nil
	}
	return err
}

// SetServices injects services directly, bypassing the factory.
func SetServices(s *Services) {
	if s == nil {
		runner, scheduler, cursorAdmin, documentService, closeServices = nil, nil, nil, nil, nil
		return
	}
	runner = s.Runner
	scheduler = s.Scheduler
	cursorAdmin = s.Cursors
	documentService = s.Documents
	closeServices = s.Close
}

func loadServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	pretty, err := logger.ParseFormat(logFormat, os.Stderr)
	if err != nil {
		return err
	}
	logger.SetPretty(pretty)

	if cmd.Annotations[skipServicesAnnotation] == "true" {
		return nil
	}
	if runner != nil || factory == nil {
		return nil
	}

	s, err := factory(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	SetServices(s)
	return nil
}
