package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

var cursorCmd = &cobra.Command{
	Use:   "cursor",
	Short: "Inspect or override worker cursors",
	Long: `Shows, sets or resets the stored cursor of a worker. A reset cursor is
bootstrapped again on the next run.`,
}

var cursorShowCmd = &cobra.Command{
	Use:   "show [worker-id]",
	Short: "Show the stored cursor",
	Args:  cobra.ExactArgs(1),
	RunE:  runCursorShow,
}

var cursorSetCmd = &cobra.Command{
	Use:   "set [worker-id] [value]",
	Short: "Set the stored cursor",
	Long:  `Stores a new cursor. Moving the cursor backwards requires --force.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runCursorSet,
}

var cursorResetCmd = &cobra.Command{
	Use:   "reset [worker-id]",
	Short: "Remove the stored cursor",
	Args:  cobra.ExactArgs(1),
	RunE:  runCursorReset,
}

// cursorForce is a flag for the set command.
var cursorForce bool

func init() {
	cursorSetCmd.Flags().BoolVarP(&cursorForce, "force", "f", false, "Allow moving the cursor backwards")

	cursorCmd.AddCommand(cursorShowCmd)
	cursorCmd.AddCommand(cursorSetCmd)
	cursorCmd.AddCommand(cursorResetCmd)
	rootCmd.AddCommand(cursorCmd)
}

func runCursorShow(cmd *cobra.Command, args []string) error {
	if cursorAdmin == nil {
		return errors.New("cursor service not configured")
	}

	workerID := args[0]
	value, ok, err := cursorAdmin.Show(commandContext(cmd), workerID)
	if err != nil {
		return fmt.Errorf("failed to read cursor: %w", err)
	}
	if !ok {
		cmd.Printf("No cursor stored for %s; the next run bootstraps it.\n", workerID)
		return nil
	}

	cmd.Printf("%s: %s\n", workerID, value)
	return nil
}

func runCursorSet(cmd *cobra.Command, args []string) error {
	if cursorAdmin == nil {
		return errors.New("cursor service not configured")
	}

	workerID, value := args[0], args[1]
	if err := cursorAdmin.Set(commandContext(cmd), workerID, value, cursorForce); err != nil {
		if errors.Is(err, domain.ErrCursorRegression) {
			return fmt.Errorf("failed to set cursor: %w (use --force to override)", err)
		}
		return fmt.Errorf("failed to set cursor: %w", err)
	}

	cmd.Printf("Cursor for %s set to %s\n", workerID, value)
	return nil
}

func runCursorReset(cmd *cobra.Command, args []string) error {
	if cursorAdmin == nil {
		return errors.New("cursor service not configured")
	}

	workerID := args[0]
	if err := cursorAdmin.Reset(commandContext(cmd), workerID); err != nil {
		return fmt.Errorf("failed to reset cursor: %w", err)
	}

	cmd.Printf("Cursor for %s reset\n", workerID)
	return nil
}
