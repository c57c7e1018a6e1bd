package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aki/chatsweep/internal/cli/ui"
	"github.com/aki/chatsweep/internal/core/history"
)

var (
	historyLimit int
	historyClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent bulk delete operations",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "Maximum number of operations to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete the recorded history")
}

func runHistory(cmd *cobra.Command, args []string) error {
	c, err := newContainer()
	if err != nil {
		return err
	}

	if historyClear {
		if err := c.History.Clear(cmd.Context()); err != nil {
			return err
		}
		ui.Success("History cleared")
		return nil
	}

	results, err := c.History.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(results)
	}

	ui.PrintHistory(results, time.Now())
	if len(results) > 0 {
		deleted, failed := history.Totals(results)
		ui.OutputLine("%s", ui.DimStyle.Render(fmt.Sprintf("Total: %d deleted, %d failed", deleted, failed)))
	}
	return nil
}
