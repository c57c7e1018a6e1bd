package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aki/chatsweep/internal/app"
)

// newContainer loads configuration from the --config flag
func newContainer() (*app.Container, error) {
	return app.NewContainer(flagConfigPath, CreateLogger())
}

// signalContext is cancelled on Ctrl+C or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
