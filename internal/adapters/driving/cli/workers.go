package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "List configured workers",
	Args:  cobra.NoArgs,
	RunE:  runWorkers,
}

func init() {
	rootCmd.AddCommand(workersCmd)
}

func runWorkers(cmd *cobra.Command, _ []string) error {
	if runner == nil {
		return errors.New("runner not configured")
	}

	workers := runner.Workers()
	if len(workers) == 0 {
		cmd.Println("No workers configured.")
		return nil
	}

	ctx := commandContext(cmd)
	cmd.Println("Workers:")
	for _, w := range workers {
		state := "enabled"
		if !w.Spec.Enabled {
			state = "disabled"
		}
		cmd.Printf("\n  %s (%s)\n", w.ID, state)
		cmd.Printf("    Identity: %s\n", w.Identity)

		cursor := "(none)"
		if cursorAdmin != nil {
			value, ok, err := cursorAdmin.Show(ctx, w.ID)
			switch {
			case err != nil:
				cursor = fmt.Sprintf("(unreadable: %v)", err)
			case ok:
				cursor = value
			}
		}
		cmd.Printf("    Cursor: %s\n", cursor)

		status, err := runner.Status(ctx, w.ID)
		if err != nil {
			continue
		}
		if status.Running {
			cmd.Printf("    Running: %s\n", status.Phase)
		}
		if status.LastResult == nil {
			continue
		}
		cmd.Printf("    Last run: %s (%d documents)\n", status.LastResult.Outcome, status.LastResult.DocumentCount())
	}
	return nil
}
