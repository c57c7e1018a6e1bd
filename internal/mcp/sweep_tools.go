package mcp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aki/chatsweep/internal/core/menu"
	"github.com/aki/chatsweep/internal/core/message"
	"github.com/aki/chatsweep/internal/core/semaphore"
	"github.com/aki/chatsweep/internal/core/sweep"
)

const (
	defaultHistoryLimit = 20

	// maxDelayMs bounds the per-call delay_ms override to one minute
	maxDelayMs = 60_000
)

// PreviewResult is the payload of sweep_preview
type PreviewResult struct {
	Actor     message.Actor     `json:"actor"`
	ChannelID string            `json:"channel_id"`
	Quantity  message.Quantity  `json:"quantity"`
	Count     int               `json:"count"`
	Messages  []message.Message `json:"messages"`
}

// DeleteResult is the payload of sweep_delete
type DeleteResult struct {
	ConfirmationRequired bool           `json:"confirmation_required,omitempty"`
	Prompt               *sweep.Prompt  `json:"prompt,omitempty"`
	Operation            *sweep.Result  `json:"operation,omitempty"`
	Summary              *sweep.Summary `json:"summary,omitempty"`
}

// MenuResult is the payload of sweep_menu
type MenuResult struct {
	MessageID string      `json:"message_id"`
	Owned     bool        `json:"owned"`
	Items     []menu.Item `json:"items"`
}

func (s *Server) handlePreview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := requestFromArgs(request.GetArguments())
	if err != nil {
		return nil, err
	}

	actor, msgs, err := s.sweeper.Preview(ctx, req)
	if err != nil {
		return nil, s.mapError(req, err)
	}

	return createEnhancedResult("sweep_preview", PreviewResult{
		Actor:     actor,
		ChannelID: req.ChannelID,
		Quantity:  req.Quantity,
		Count:     len(msgs),
		Messages:  msgs,
	})
}

func (s *Server) handleDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	req, err := requestFromArgs(args)
	if err != nil {
		return nil, err
	}

	settings := s.settings
	if raw, ok := args["delay_ms"]; ok {
		delay, isNumber := raw.(float64)
		if !isNumber || delay != math.Trunc(delay) || delay < 0 || delay > maxDelayMs {
			return nil, InvalidParameterError("delay_ms",
				fmt.Sprintf("a whole number of milliseconds between 0 and %d", maxDelayMs))
		}
		settings.DelayMs = int(delay)
	}

	// The confirm argument stands in for the interactive dialog
	confirm, _ := args["confirm"].(bool)
	approve := sweep.ConfirmerFunc(func(context.Context, sweep.Prompt) (bool, error) {
		return confirm, nil
	})
	proceed, err := sweep.Gate(ctx, approve, settings, req.Quantity)
	if err != nil {
		return nil, err
	}
	if !proceed {
		prompt := sweep.PromptFor(req.Quantity)
		return createEnhancedResult("sweep_delete", DeleteResult{
			ConfirmationRequired: true,
			Prompt:               &prompt,
		})
	}

	settings.RequireConfirmation = false
	result, err := s.sweeper.Execute(ctx, req, settings)
	if err != nil {
		return nil, s.mapError(req, err)
	}

	summary := sweep.Summarize(result.Outcome)
	return createEnhancedResult("sweep_delete", DeleteResult{
		Operation: &result,
		Summary:   &summary,
	})
}

func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := defaultHistoryLimit
	if raw, ok := request.GetArguments()["limit"]; ok {
		n, err := intArg(raw)
		if err != nil || n < 0 {
			return nil, InvalidParameterError("limit", "a non-negative integer")
		}
		limit = n
	}

	results, err := s.history.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	return createEnhancedResult("sweep_history", results)
}

func (s *Server) handleMenu(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	channelID, ok := args["channel_id"].(string)
	if !ok || channelID == "" {
		return nil, fmt.Errorf("invalid or missing channel_id argument")
	}
	messageID, ok := args["message_id"].(string)
	if !ok || messageID == "" {
		return nil, fmt.Errorf("invalid or missing message_id argument")
	}

	actor, err := s.messages.CurrentActor(ctx)
	if err != nil {
		return nil, ActorUnavailableError(err)
	}

	msg, err := s.messages.GetMessage(ctx, channelID, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	return createEnhancedResult("sweep_menu", MenuResult{
		MessageID: msg.ID,
		Owned:     msg.OwnedBy(actor.ID),
		Items:     menu.ForMessage(menu.DefaultHostItems(), msg, actor, menu.AfterAnchor(menu.HostDeleteID)),
	})
}

func (s *Server) mapError(req message.Request, err error) error {
	switch {
	case errors.Is(err, sweep.ErrActorUnavailable):
		return ActorUnavailableError(err)
	case errors.Is(err, sweep.ErrNothingFound):
		return NothingFoundError(req.ChannelID)
	case errors.As(err, new(semaphore.ErrChannelBusy)):
		return ChannelBusyError(err)
	case errors.Is(err, message.ErrInvalidQuantity):
		return InvalidParameterError("quantity", "a positive number or \"all\"")
	default:
		s.logger.Warn("sweep tool failed", "channel_id", req.ChannelID, "error", err)
		return err
	}
}

func requestFromArgs(args map[string]interface{}) (message.Request, error) {
	channelID, ok := args["channel_id"].(string)
	if !ok || channelID == "" {
		return message.Request{}, fmt.Errorf("invalid or missing channel_id argument")
	}

	q, err := quantityArg(args["quantity"])
	if err != nil {
		return message.Request{}, err
	}

	return message.Request{ChannelID: channelID, Quantity: q}, nil
}

// quantityArg accepts "all", a numeric string or a JSON number
func quantityArg(raw interface{}) (message.Quantity, error) {
	switch v := raw.(type) {
	case string:
		q, err := message.ParseQuantity(v)
		if err != nil {
			return 0, InvalidParameterError("quantity", "a positive number or \"all\"")
		}
		return q, nil
	case float64:
		q := message.Quantity(int(v))
		if float64(int(v)) != v || q.Validate() != nil {
			return 0, InvalidParameterError("quantity", "a positive number or \"all\"")
		}
		return q, nil
	default:
		return 0, fmt.Errorf("invalid or missing quantity argument")
	}
}

func intArg(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case string:
		return strconv.Atoi(v)
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
			return 0, fmt.Errorf("%v is not a usable integer", v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("unexpected type %T", raw)
	}
}
