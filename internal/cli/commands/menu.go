package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aki/chatsweep/internal/cli/ui"
	"github.com/aki/chatsweep/internal/core/menu"
	"github.com/aki/chatsweep/internal/core/message"
)

var (
	menuSelect string
	menuYes    bool
	menuAppend bool
)

var menuCmd = &cobra.Command{
	Use:   "menu <channel-id> <message-id>",
	Short: "Show the action menu for a message",
	Long: `Show the actions available on a message. Your own messages get the bulk
delete group, inserted right after the single-message delete action.

Pass --select with an action ID (delete-10, delete-all) or a bare quantity to
run that choice.`,
	Example: `  chatsweep menu 1234567890 9876543210
  chatsweep menu 1234567890 9876543210 --select delete-50`,
	Args: cobra.ExactArgs(2),
	RunE: runMenu,
}

func init() {
	menuCmd.Flags().StringVarP(&menuSelect, "select", "s", "", "Run the bulk delete choice with this ID")
	menuCmd.Flags().BoolVarP(&menuYes, "yes", "y", false, "Skip the confirmation prompt")
	menuCmd.Flags().BoolVar(&menuAppend, "append", false, "Place the group at the end instead of after the delete action")
}

func runMenu(cmd *cobra.Command, args []string) error {
	channelID, messageID := args[0], args[1]

	c, err := newContainer()
	if err != nil {
		return err
	}
	client, err := c.Client()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	actor, err := client.CurrentActor(ctx)
	if err != nil {
		return err
	}
	msg, err := client.GetMessage(ctx, channelID, messageID)
	if err != nil {
		return err
	}

	policy := menu.AfterAnchor(menu.HostDeleteID)
	if menuAppend {
		policy = menu.Append()
	}
	items := menu.ForMessage(menu.DefaultHostItems(), msg, actor, policy)

	if menuSelect == "" {
		if ui.GlobalFormatter.IsJSON() {
			return ui.GlobalFormatter.Output(items)
		}
		ui.PrintMenu(items)
		return nil
	}

	if !msg.OwnedBy(actor.ID) {
		return fmt.Errorf("bulk delete is only offered on your own messages")
	}
	q, err := menu.Lookup(menuSelect)
	if err != nil {
		return err
	}

	return executeSweep(cmd, c, message.Request{ChannelID: channelID, Quantity: q}, c.Settings(), menuYes)
}
