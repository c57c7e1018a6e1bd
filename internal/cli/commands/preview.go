package commands

import (
	"github.com/spf13/cobra"

	"github.com/aki/chatsweep/internal/app"
	"github.com/aki/chatsweep/internal/cli/ui"
	"github.com/aki/chatsweep/internal/core/message"
)

var previewCount string

var previewCmd = &cobra.Command{
	Use:   "preview <channel-id>",
	Short: "List the messages a sweep would delete",
	Long:  "Collect your most recent messages in a channel without deleting anything.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewCount, "count", "n", "10", "Number of messages, or all")
}

func runPreview(cmd *cobra.Command, args []string) error {
	q, err := message.ParseQuantity(previewCount)
	if err != nil {
		return err
	}

	c, err := newContainer()
	if err != nil {
		return err
	}

	opts := app.SweeperOptions{}
	if !ui.GlobalFormatter.IsJSON() {
		opts.Observers = append(opts.Observers, ui.NewProgress())
	}
	s, err := c.NewSweeper(opts)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	actor, msgs, err := s.Preview(ctx, message.Request{ChannelID: args[0], Quantity: q})
	if err != nil {
		return err
	}

	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(map[string]interface{}{
			"actor":    actor,
			"count":    len(msgs),
			"messages": msgs,
		})
	}

	ui.PrintPreview(actor, msgs)
	return nil
}
