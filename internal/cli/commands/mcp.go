package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aki/chatsweep/internal/app"
	"github.com/aki/chatsweep/internal/cli/ui"
	"github.com/aki/chatsweep/internal/core/config"
	"github.com/aki/chatsweep/internal/core/sweep"
	"github.com/aki/chatsweep/internal/mcp"
)

var (
	serveTransport string
	servePort      int
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start a Model Context Protocol server exposing sweep_preview, sweep_delete,
sweep_history and sweep_menu to AI assistants.

sweep_delete honours sweep.require_confirmation: without confirm=true it only
returns the confirmation prompt.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVarP(&serveTransport, "transport", "t", "", "Transport type (stdio, http)")
	mcpCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port for HTTP transport (default from config)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	c, err := newContainer()
	if err != nil {
		return err
	}

	transport := serveTransport
	if transport == "" {
		transport = c.Config.MCP.Transport.Type
	}

	var httpConfig *config.HTTPConfig
	if transport == "http" {
		httpConfig = &config.HTTPConfig{Port: c.Config.MCP.Transport.HTTP.Port}
		if servePort != 0 {
			httpConfig.Port = servePort
		}
	}

	// Confirmation is handled by the tool's confirm argument
	sweeper, err := c.NewSweeper(app.SweeperOptions{Confirmer: sweep.AutoConfirm})
	if err != nil {
		return err
	}
	client, err := c.Client()
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(mcp.Dependencies{
		Sweeper:  sweeper,
		Messages: client,
		History:  c.History,
		Settings: c.Settings(),
		Logger:   c.Logger,
		Version:  currentVersion().Version,
	}, transport, httpConfig)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if transport == "stdio" {
		// stdout carries the protocol, so everything else goes to stderr
		fmt.Fprintf(ui.Stderr, "Starting MCP server with stdio transport\n")
	} else {
		ui.Info("Starting MCP server on port %d", httpConfig.Port)
		if addr := c.Config.Metrics.Addr; addr != "" {
			go func() {
				if err := c.Metrics.Serve(ctx, addr, c.Logger); err != nil {
					c.Logger.Warn("metrics endpoint stopped", "error", err)
				}
			}()
		}
	}

	if err := server.Start(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintf(ui.Stderr, "MCP server stopped\n")
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
