package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

var runCmd = &cobra.Command{
	Use:   "run [worker-id]",
	Short: "Run workers once",
	Long: `Runs one pass of a worker: fetch new items, extract documents and
advance the cursor. If a worker ID is provided, only that worker runs.
Otherwise, all enabled workers run concurrently.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if runner == nil {
		return errors.New("runner not configured")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	if len(args) > 0 {
		workerID := args[0]
		cmd.Printf("Running worker: %s...\n", workerID)

		result, err := runner.Run(ctx, workerID)
		printResult(cmd, result)
		if err != nil {
			return fmt.Errorf("run failed: %w", err)
		}
		return nil
	}

	cmd.Println("Running all enabled workers...")
	results, err := runner.RunAll(ctx)
	if len(results) == 0 && err == nil {
		cmd.Println("No enabled workers configured.")
		return nil
	}
	for _, result := range results {
		printResult(cmd, result)
	}
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}

// printResult writes a one-block summary of a run.
func printResult(cmd *cobra.Command, result *domain.RunResult) {
	if result == nil {
		return
	}

	cmd.Printf("\n%s: %s\n", result.WorkerID, result.Outcome)
	if b := result.Batch; b != nil && !b.Skipped {
		cmd.Printf("  Window: %s\n", b.Window)
		cmd.Printf("  Items: %d\n", b.ItemsFetched)
		if b.ExtractionFailures > 0 {
			cmd.Printf("  Extraction failures: %d\n", b.ExtractionFailures)
		}
	}
	cmd.Printf("  Documents: %d\n", result.DocumentCount())
	cmd.Printf("  Cursor: %s -> %s\n", displayCursor(result.CursorBefore), displayCursor(result.CursorAfter))
	if result.Outcome == domain.OutcomeFailed && result.Err != nil {
		cmd.Printf("  Error: %v\n", result.Err)
	}
}

func displayCursor(c string) string {
	if c == "" {
		return "(none)"
	}
	return c
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
