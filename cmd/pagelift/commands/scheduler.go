package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pagelift/backend/internal/scheduler"
	"github.com/pagelift/backend/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the recompute scheduler",
	Long: `Starts the cron scheduler with the nightly full score recompute.

The schedule comes from RECOMPUTE_SCHEDULE (cron expression with seconds,
default "0 0 3 * * *").

Example:
  go run ./cmd/pagelift scheduler`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== pagelift Scheduler ===")

	svcs, err := buildServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	if !svcs.cfg.Scheduler.Enabled {
		return fmt.Errorf("scheduler is disabled (SCHEDULER_ENABLED=false)")
	}

	sched := scheduler.New(svcs.log)

	recompute := jobs.NewRecomputeJob(svcs.metrics, svcs.cfg.Scheduler.RecomputeSchedule, svcs.log)
	if err := sched.AddJob(recompute); err != nil {
		return fmt.Errorf("register recompute job: %w", err)
	}

	sched.Start()
	fmt.Printf("✅ Scheduler running (%s: %q)\n", recompute.Name(), recompute.Schedule())
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}
