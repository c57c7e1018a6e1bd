package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/aki/chatsweep/internal/cli/ui"
)

var statusClear bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List bulk deletes that are running right now",
	Long: `List running sweeps from every chatsweep process on this machine. A channel
can only be swept by one operation at a time.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusClear, "clear", false, "Forget all running sweeps (after a crash)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	c, err := newContainer()
	if err != nil {
		return err
	}

	if statusClear {
		if err := c.Active.Clear(cmd.Context()); err != nil {
			return err
		}
		ui.Success("Running sweeps cleared")
		return nil
	}

	holders, err := c.Active.Holders(cmd.Context())
	if err != nil {
		return err
	}

	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(holders)
	}
	ui.PrintActive(holders, time.Now())
	return nil
}
