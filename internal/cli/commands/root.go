package commands

import (
	"github.com/spf13/cobra"

	"github.com/aki/chatsweep/internal/cli/ui"
	"github.com/aki/chatsweep/internal/core/logger"
)

var (
	flagConfigPath string
	flagFormat     string
)

var rootCmd = &cobra.Command{
	Use:   "chatsweep",
	Short: "Bulk delete your own chat messages without tripping rate limits",
	Long: `chatsweep collects your most recent messages in a channel and deletes them
one at a time, pausing between calls so the chat API never throttles you.

Only messages you authored are ever touched. Every run asks for confirmation
unless --yes is given or sweep.require_confirmation is false.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupGlobals,
}

func init() {
	RegisterLoggerFlags(rootCmd)
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Config file (default ~/.chatsweep/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "pretty", "Output format (pretty, json)")

	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(versionCmd)
}

func setupGlobals(cmd *cobra.Command, args []string) error {
	format, err := ui.ParseFormat(flagFormat)
	if err != nil {
		return err
	}
	if err := ui.SetGlobalFormatter(format); err != nil {
		return err
	}

	if _, err := logger.ParseLevel(flagLogLevel); err != nil {
		return err
	}
	if _, err := logger.ParseFormat(flagLogFormat); err != nil {
		return err
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
