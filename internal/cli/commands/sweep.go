package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aki/chatsweep/internal/app"
	"github.com/aki/chatsweep/internal/cli/ui"
	"github.com/aki/chatsweep/internal/core/menu"
	"github.com/aki/chatsweep/internal/core/message"
	"github.com/aki/chatsweep/internal/core/sweep"
)

var (
	sweepCount string
	sweepYes   bool
	sweepDelay int
)

var sweepCmd = &cobra.Command{
	Use:   "sweep <channel-id>",
	Short: "Delete your most recent messages in a channel",
	Long: `Collect your most recent messages in a channel, newest first, and delete
them one at a time.

The count is 10, 50, 100 (the menu choices), any other positive number, or
"all" for every message you ever sent there.`,
	Example: `  chatsweep sweep 1234567890 --count 50
  chatsweep sweep 1234567890 --count all --yes --delay 1000`,
	Args: cobra.ExactArgs(1),
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().StringVarP(&sweepCount, "count", "n", "10", fmt.Sprintf("Number of messages (%s, or any positive number)", strings.Join(menu.Choices(), ", ")))
	sweepCmd.Flags().BoolVarP(&sweepYes, "yes", "y", false, "Skip the confirmation prompt")
	sweepCmd.Flags().IntVar(&sweepDelay, "delay", sweep.DefaultDelayMs, "Pause between delete calls in milliseconds (default from config)")
}

func runSweep(cmd *cobra.Command, args []string) error {
	q, err := message.ParseQuantity(sweepCount)
	if err != nil {
		return err
	}

	c, err := newContainer()
	if err != nil {
		return err
	}

	settings := c.Settings()
	if cmd.Flags().Changed("delay") {
		settings.DelayMs = sweepDelay
	}

	return executeSweep(cmd, c, message.Request{ChannelID: args[0], Quantity: q}, settings, sweepYes)
}

// newConfirmer builds the interactive confirmation dialog
var newConfirmer = func() sweep.Confirmer {
	return ui.NewPrompter()
}

// executeSweep runs one bulk delete with terminal collaborators and prints
// the outcome
func executeSweep(cmd *cobra.Command, c *app.Container, req message.Request, settings sweep.Settings, yes bool) error {
	opts := app.SweeperOptions{Confirmer: newConfirmer()}
	if yes {
		opts.Confirmer = sweep.AutoConfirm
	}
	if !ui.GlobalFormatter.IsJSON() {
		opts.Notifier = ui.NewNotifier()
		opts.Observers = append(opts.Observers, ui.NewProgress())
	}

	s, err := c.NewSweeper(opts)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	result, err := s.Execute(ctx, req, settings)
	switch {
	case errors.Is(err, sweep.ErrNothingFound):
		// Already reported through the notifier
		if ui.GlobalFormatter.IsJSON() {
			return ui.GlobalFormatter.Output(result)
		}
		return nil
	case err != nil:
		return err
	}

	if ui.GlobalFormatter.IsJSON() {
		if err := ui.GlobalFormatter.Output(result); err != nil {
			return err
		}
	} else if result.Status == sweep.StatusAborted {
		ui.Info("Cancelled, no messages were deleted")
		return nil
	} else {
		ui.PrintResult(result)
	}

	if result.Status == sweep.StatusInterrupted {
		return fmt.Errorf("interrupted after %d of %d messages", result.Outcome.Succeeded, result.Collected)
	}
	if result.Outcome.HasFailures() {
		return fmt.Errorf("%d of %d deletions failed", result.Outcome.Failed, result.Outcome.Total())
	}
	return nil
}
