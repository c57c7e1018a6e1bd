// Package mcp exposes the bulk delete pipeline as Model Context Protocol
// tools over stdio or HTTP/SSE.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aki/chatsweep/internal/core/config"
	"github.com/aki/chatsweep/internal/core/logger"
	"github.com/aki/chatsweep/internal/core/message"
	"github.com/aki/chatsweep/internal/core/sweep"
)

// Sweeper runs previews and bulk deletes
type Sweeper interface {
	Preview(ctx context.Context, req message.Request) (message.Actor, []message.Message, error)
	Execute(ctx context.Context, req message.Request, settings sweep.Settings) (sweep.Result, error)
}

// MessageSource resolves single messages and the current user
type MessageSource interface {
	sweep.ActorResolver
	GetMessage(ctx context.Context, channelID, messageID string) (message.Message, error)
}

// HistoryReader lists recorded operations
type HistoryReader interface {
	List(ctx context.Context, limit int) ([]sweep.Result, error)
}

// Dependencies wires the server to the pipeline
type Dependencies struct {
	Sweeper  Sweeper
	Messages MessageSource
	History  HistoryReader
	Settings sweep.Settings
	Logger   logger.Logger
	Version  string
}

// Server implements the MCP server using mcp-go
type Server struct {
	mcpServer  *server.MCPServer
	sweeper    Sweeper
	messages   MessageSource
	history    HistoryReader
	settings   sweep.Settings
	logger     logger.Logger
	transport  string
	httpConfig *config.HTTPConfig
}

// NewServer creates a new MCP server
func NewServer(deps Dependencies, transport string, httpConfig *config.HTTPConfig) (*Server, error) {
	if deps.Sweeper == nil || deps.Messages == nil {
		return nil, errors.New("mcp server requires a sweeper and a message source")
	}
	if err := deps.Settings.Validate(); err != nil {
		return nil, err
	}
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		mcpServer: server.NewMCPServer(
			"chatsweep",
			version,
			server.WithLogging(),
		),
		sweeper:    deps.Sweeper,
		messages:   deps.Messages,
		history:    deps.History,
		settings:   deps.Settings,
		logger:     logger.OrNop(deps.Logger),
		transport:  transport,
		httpConfig: httpConfig,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all chatsweep tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("sweep_preview",
		mcp.WithDescription(GetEnhancedDescription("sweep_preview")),
		mcp.WithString("channel_id",
			mcp.Description("Channel or conversation ID"),
			mcp.Required(),
		),
		mcp.WithString("quantity",
			mcp.Description("How many of your most recent messages: a positive number or \"all\""),
			mcp.Required(),
		),
	), s.handlePreview)

	s.mcpServer.AddTool(mcp.NewTool("sweep_delete",
		mcp.WithDescription(GetEnhancedDescription("sweep_delete")),
		mcp.WithString("channel_id",
			mcp.Description("Channel or conversation ID"),
			mcp.Required(),
		),
		mcp.WithString("quantity",
			mcp.Description("How many of your most recent messages: a positive number or \"all\""),
			mcp.Required(),
		),
		mcp.WithBoolean("confirm",
			mcp.Description("Set to true once the user has approved the confirmation prompt"),
		),
		mcp.WithNumber("delay_ms",
			mcp.Description("Pause between delete calls in milliseconds, 0 to 60000 (optional)"),
		),
	), s.handleDelete)

	if s.history != nil {
		s.mcpServer.AddTool(mcp.NewTool("sweep_history",
			mcp.WithDescription(GetEnhancedDescription("sweep_history")),
			mcp.WithString("limit",
				mcp.Description("Maximum number of operations to return (optional, default 20)"),
			),
		), s.handleHistory)
	}

	s.mcpServer.AddTool(mcp.NewTool("sweep_menu",
		mcp.WithDescription(GetEnhancedDescription("sweep_menu")),
		mcp.WithString("channel_id",
			mcp.Description("Channel or conversation ID"),
			mcp.Required(),
		),
		mcp.WithString("message_id",
			mcp.Description("Message the menu is opened on"),
			mcp.Required(),
		),
	), s.handleMenu)
}

// Start starts the MCP server
func (s *Server) Start(ctx context.Context) error {
	switch s.transport {
	case "stdio", "":
		return server.ServeStdio(s.mcpServer)
	case "http":
		return s.startHTTPServer(ctx)
	default:
		return fmt.Errorf("unsupported transport: %s", s.transport)
	}
}

// startHTTPServer starts the HTTP/SSE server
func (s *Server) startHTTPServer(ctx context.Context) error {
	if s.httpConfig == nil || s.httpConfig.Port == 0 {
		return fmt.Errorf("HTTP configuration required")
	}

	sseServer := server.NewSSEServer(s.mcpServer)

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.httpConfig.Port),
		Handler:           corsMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("failed to shutdown MCP server", "error", err)
		}
	}()

	s.logger.Info("MCP server listening",
		"sse", fmt.Sprintf("http://localhost:%d/sse", s.httpConfig.Port),
		"message", fmt.Sprintf("http://localhost:%d/message", s.httpConfig.Port),
	)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
