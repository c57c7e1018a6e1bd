package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aki/chatsweep/internal/cli/ui"
	"github.com/aki/chatsweep/internal/core/logger"
)

// Global flags for logging configuration
var (
	flagLogLevel  string
	flagLogFormat string
)

// RegisterLoggerFlags registers global logging flags
func RegisterLoggerFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
}

// CreateLogger creates a logger based on CLI flags. Invalid values were
// rejected in the root pre-run, so parse errors fall back to defaults here.
func CreateLogger() logger.Logger {
	level, err := logger.ParseLevel(flagLogLevel)
	if err != nil {
		level = slog.LevelWarn
	}

	format, err := logger.ParseFormat(flagLogFormat)
	if err != nil {
		format = logger.FormatText
	}

	return logger.New(
		logger.WithLevel(level),
		logger.WithFormat(format),
		logger.WithOutput(ui.Stderr),
	)
}
