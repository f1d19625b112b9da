package cli

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"guild-tasks/internal/bot"
	"guild-tasks/internal/service"
)

const jobTimeout = 2 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot with its reminder and cleanup jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		scheduler := service.NewSchedulerService(a.cfg.Location)
		if err := scheduler.ScheduleDaily("daily-reminder-window", a.cfg.ReminderTime, func() {
			runSweep(ctx, "reminder", a.reminders.Run)
		}); err != nil {
			return err
		}
		if err := scheduler.ScheduleInterval("completed-task-cleanup", a.cfg.CleanupInterval, func() {
			runSweep(ctx, "cleanup", a.cleanup.Run)
		}); err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
		log.Printf("[info] next reminder window at %s", scheduler.Next("daily-reminder-window"))

		log.Println("Guild tasks bot started.")
		if err := bot.New(a.session, a.tasks, a.categories).Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		log.Println("Shutdown complete.")
		return nil
	},
}

func runSweep(ctx context.Context, name string, run func(context.Context) (service.SweepResult, error)) {
	jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()
	result, err := run(jobCtx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("%s: %v", name, err)
		return
	}
	if result.Found > 0 {
		log.Printf("[info] %s done=%d skipped=%d failed=%d", name, result.Done, result.Skipped, result.Failed)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
