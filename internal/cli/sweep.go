package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"guild-tasks/internal/service"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a periodic job once",
}

var sweepRemindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Send reminders for open tasks due today",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return runOnce(cmd.Context(), cmd.OutOrStdout(), "reminders", a.reminders.Run)
	},
}

var sweepExpiredCmd = &cobra.Command{
	Use:   "expired",
	Short: "Remove completed tasks past the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return runOnce(cmd.Context(), cmd.OutOrStdout(), "expired", a.cleanup.Run)
	},
}

func runOnce(ctx context.Context, out io.Writer, name string, run func(context.Context) (service.SweepResult, error)) error {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()
	result, err := run(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	fmt.Fprintf(out, "%s: found=%d done=%d skipped=%d failed=%d\n", name, result.Found, result.Done, result.Skipped, result.Failed)
	return nil
}

func init() {
	sweepCmd.AddCommand(sweepRemindersCmd, sweepExpiredCmd)
	rootCmd.AddCommand(sweepCmd)
}
