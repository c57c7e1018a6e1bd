package commands

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/aki/chatsweep/internal/app"
	"github.com/aki/chatsweep/internal/cli/ui"
	"github.com/aki/chatsweep/internal/core/schedule"
	"github.com/aki/chatsweep/internal/core/sweep"
)

var (
	scheduleYes  bool
	scheduleOnce bool
)

// errNoSchedules is returned when the schedules section is empty
var errNoSchedules = errors.New("no schedules configured (add a schedules section to the config file)")

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run bulk deletes on cron schedules",
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List schedules and their next run",
	Args:  cobra.NoArgs,
	RunE:  runScheduleList,
}

var scheduleRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduler in the foreground",
	Long: `Evaluate every schedule at the start of each minute and run the due ones
one after another. Scheduled runs cannot prompt, so they need
sweep.require_confirmation: false or --yes.`,
	Args: cobra.NoArgs,
	RunE: runScheduleRun,
}

func init() {
	scheduleRunCmd.Flags().BoolVarP(&scheduleYes, "yes", "y", false, "Run without confirmation even if the config requires it")
	scheduleRunCmd.Flags().BoolVar(&scheduleOnce, "once", false, "Evaluate the current minute once and exit")

	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleRunCmd)
}

func runScheduleList(cmd *cobra.Command, args []string) error {
	c, err := newContainer()
	if err != nil {
		return err
	}

	s, err := schedule.New(schedule.EntriesFromConfig(c.Config.Schedules), func(context.Context, schedule.Entry) error {
		return nil
	})
	if err != nil {
		return err
	}

	now := time.Now()
	runs, err := s.NextRuns(now)
	if err != nil {
		return err
	}

	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(runs)
	}
	ui.PrintNextRuns(runs, now)
	return nil
}

func runScheduleRun(cmd *cobra.Command, args []string) error {
	c, err := newContainer()
	if err != nil {
		return err
	}
	if len(c.Config.Schedules) == 0 {
		return errNoSchedules
	}

	settings := c.Settings()
	if settings.RequireConfirmation && !scheduleYes {
		return errors.New("scheduled runs cannot ask for confirmation: set sweep.require_confirmation to false or pass --yes")
	}
	settings.RequireConfirmation = false

	sweeper, err := c.NewSweeper(app.SweeperOptions{
		Confirmer: sweep.AutoConfirm,
		Notifier: sweep.NotifierFunc(func(_ context.Context, summary sweep.Summary) {
			c.Logger.Info(summary.Message, "kind", string(summary.Kind))
		}),
	})
	if err != nil {
		return err
	}

	run := func(ctx context.Context, e schedule.Entry) error {
		_, err := sweeper.Execute(ctx, e.Request(), settings)
		if errors.Is(err, sweep.ErrNothingFound) {
			return nil
		}
		return err
	}

	s, err := schedule.New(schedule.EntriesFromConfig(c.Config.Schedules), run, schedule.WithLogger(c.Logger))
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if scheduleOnce {
		n := s.Tick(ctx, time.Now().Truncate(time.Minute))
		ui.Info("%d scheduled sweeps ran", n)
		return nil
	}

	if addr := c.Config.Metrics.Addr; addr != "" {
		go func() {
			if err := c.Metrics.Serve(ctx, addr, c.Logger); err != nil {
				c.Logger.Warn("metrics endpoint stopped", "error", err)
			}
		}()
	}

	ui.Info("Scheduler running with %d schedules, press Ctrl+C to stop", len(s.Entries()))
	return s.Run(ctx)
}
