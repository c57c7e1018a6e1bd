package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aki/chatsweep/internal/core/menu"
	"github.com/aki/chatsweep/internal/core/message"
	"github.com/aki/chatsweep/internal/core/semaphore"
	"github.com/aki/chatsweep/internal/core/sweep"
)

const me = "me"

// fakeChat is an in-memory channel history, newest first
type fakeChat struct {
	mu       sync.Mutex
	messages []message.Message
	deleted  []string
	noActor  bool
}

func newFakeChat(authors ...string) *fakeChat {
	c := &fakeChat{}
	for i, a := range authors {
		c.messages = append(c.messages, message.Message{
			ID:        fmt.Sprintf("%03d", len(authors)-i),
			ChannelID: "42",
			AuthorID:  a,
		})
	}
	return c
}

func (c *fakeChat) ListMessages(_ context.Context, _, before string, limit int) ([]message.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var page []message.Message
	for _, m := range c.messages {
		if before != "" && m.ID >= before {
			continue
		}
		page = append(page, m)
		if len(page) == limit {
			break
		}
	}
	return page, nil
}

func (c *fakeChat) DeleteMessage(_ context.Context, _, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, id)
	return nil
}

func (c *fakeChat) CurrentActor(context.Context) (message.Actor, error) {
	if c.noActor {
		return message.Actor{}, errors.New("401 unauthorized")
	}
	return message.Actor{ID: me, Username: "aki"}, nil
}

func (c *fakeChat) GetMessage(_ context.Context, _, id string) (message.Message, error) {
	for _, m := range c.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return message.Message{}, fmt.Errorf("unknown message %s", id)
}

type fakeHistory struct {
	results []sweep.Result
}

func (h *fakeHistory) Record(_ context.Context, r sweep.Result) error {
	h.results = append([]sweep.Result{r}, h.results...)
	return nil
}

func (h *fakeHistory) List(_ context.Context, limit int) ([]sweep.Result, error) {
	if limit > 0 && limit < len(h.results) {
		return h.results[:limit], nil
	}
	return h.results, nil
}

type noSleep struct{}

func (noSleep) Sleep(context.Context, time.Duration) error { return nil }

func setupTestServer(t *testing.T, chat *fakeChat, requireConfirmation bool) (*Server, *fakeHistory) {
	t.Helper()
	hist := &fakeHistory{}

	sweeper, err := sweep.New(sweep.Dependencies{
		Lister:   chat,
		Remover:  chat,
		Actors:   chat,
		Recorder: hist,
		Sleeper:  noSleep{},
	})
	require.NoError(t, err)

	srv, err := NewServer(Dependencies{
		Sweeper:  sweeper,
		Messages: chat,
		History:  hist,
		Settings: sweep.Settings{DelayMs: 500, RequireConfirmation: requireConfirmation},
	}, "stdio", nil)
	require.NoError(t, err)
	return srv, hist
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func decodeResult(t *testing.T, result *mcp.CallToolResult, into interface{}) {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")

	var envelope struct {
		Result   json.RawMessage     `json:"result"`
		Metadata *ToolResultMetadata `json:"_metadata"`
	}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &envelope))
	require.NotNil(t, envelope.Metadata)
	require.NoError(t, json.Unmarshal(envelope.Result, into))
}

func TestSweepPreview(t *testing.T) {
	chat := newFakeChat(me, "other", me, me)
	srv, _ := setupTestServer(t, chat, true)

	result, err := srv.handlePreview(context.Background(), callRequest("sweep_preview", map[string]interface{}{
		"channel_id": "42",
		"quantity":   "2",
	}))
	require.NoError(t, err)

	var got PreviewResult
	decodeResult(t, result, &got)
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, "004", got.Messages[0].ID)
	assert.Equal(t, "002", got.Messages[1].ID)
	assert.Empty(t, chat.deleted, "preview never deletes")
}

func TestSweepDelete_RequiresConfirm(t *testing.T) {
	chat := newFakeChat(me, me)
	srv, hist := setupTestServer(t, chat, true)

	result, err := srv.handleDelete(context.Background(), callRequest("sweep_delete", map[string]interface{}{
		"channel_id": "42",
		"quantity":   "all",
	}))
	require.NoError(t, err)

	var got DeleteResult
	decodeResult(t, result, &got)
	assert.True(t, got.ConfirmationRequired)
	require.NotNil(t, got.Prompt)
	assert.Equal(t, "Delete ALL messages", got.Prompt.Title)
	assert.True(t, got.Prompt.Danger)
	assert.Nil(t, got.Operation)
	assert.Empty(t, chat.deleted)
	assert.Empty(t, hist.results)
}

func TestSweepDelete_Confirmed(t *testing.T) {
	chat := newFakeChat(me, "other", me)
	srv, hist := setupTestServer(t, chat, true)

	result, err := srv.handleDelete(context.Background(), callRequest("sweep_delete", map[string]interface{}{
		"channel_id": "42",
		"quantity":   float64(10),
		"confirm":    true,
		"delay_ms":   float64(0),
	}))
	require.NoError(t, err)

	var got DeleteResult
	decodeResult(t, result, &got)
	require.NotNil(t, got.Operation)
	assert.Equal(t, sweep.StatusCompleted, got.Operation.Status)
	assert.Equal(t, message.Outcome{Succeeded: 2}, got.Operation.Outcome)
	assert.Equal(t, "2 messages deleted", got.Summary.Message)
	assert.Equal(t, []string{"003", "001"}, chat.deleted)
	assert.Len(t, hist.results, 1)
}

func TestSweepDelete_NoConfirmationConfigured(t *testing.T) {
	chat := newFakeChat(me)
	srv, _ := setupTestServer(t, chat, false)

	_, err := srv.handleDelete(context.Background(), callRequest("sweep_delete", map[string]interface{}{
		"channel_id": "42",
		"quantity":   "10",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"001"}, chat.deleted)
}

func TestSweepDelete_Errors(t *testing.T) {
	tests := []struct {
		name    string
		chat    *fakeChat
		args    map[string]interface{}
		wantMsg string
	}{
		{
			name:    "nothing found",
			chat:    newFakeChat("other"),
			args:    map[string]interface{}{"channel_id": "42", "quantity": "10", "confirm": true},
			wantMsg: "no messages found in channel 42",
		},
		{
			name:    "actor unavailable",
			chat:    &fakeChat{noActor: true},
			args:    map[string]interface{}{"channel_id": "42", "quantity": "10", "confirm": true},
			wantMsg: "unable to resolve the current user",
		},
		{
			name:    "bad quantity",
			chat:    newFakeChat(me),
			args:    map[string]interface{}{"channel_id": "42", "quantity": "0"},
			wantMsg: "invalid quantity",
		},
		{
			name:    "fractional quantity",
			chat:    newFakeChat(me),
			args:    map[string]interface{}{"channel_id": "42", "quantity": 2.5},
			wantMsg: "invalid quantity",
		},
		{
			name:    "missing channel",
			chat:    newFakeChat(me),
			args:    map[string]interface{}{"quantity": "10"},
			wantMsg: "channel_id",
		},
		{
			name:    "negative delay",
			chat:    newFakeChat(me),
			args:    map[string]interface{}{"channel_id": "42", "quantity": "10", "delay_ms": float64(-5)},
			wantMsg: "invalid delay_ms",
		},
		{
			name:    "string delay",
			chat:    newFakeChat(me),
			args:    map[string]interface{}{"channel_id": "42", "quantity": "10", "delay_ms": "500"},
			wantMsg: "invalid delay_ms",
		},
		{
			name:    "fractional delay",
			chat:    newFakeChat(me),
			args:    map[string]interface{}{"channel_id": "42", "quantity": "10", "delay_ms": 12.5},
			wantMsg: "invalid delay_ms",
		},
		{
			name:    "delay beyond one minute",
			chat:    newFakeChat(me),
			args:    map[string]interface{}{"channel_id": "42", "quantity": "10", "delay_ms": float64(maxDelayMs + 1)},
			wantMsg: "invalid delay_ms",
		},
		{
			name:    "overflowing delay",
			chat:    newFakeChat(me),
			args:    map[string]interface{}{"channel_id": "42", "quantity": "10", "delay_ms": 1e300},
			wantMsg: "invalid delay_ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := setupTestServer(t, tt.chat, true)
			_, err := srv.handleDelete(context.Background(), callRequest("sweep_delete", tt.args))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Empty(t, tt.chat.deleted)
		})
	}
}

func TestSweepDelete_ChannelBusy(t *testing.T) {
	chat := newFakeChat(me, me)
	hist := &fakeHistory{}
	active := semaphore.New(filepath.Join(t.TempDir(), "active.yaml"), 1)

	sweeper, err := sweep.New(sweep.Dependencies{
		Lister:   chat,
		Remover:  chat,
		Actors:   chat,
		Recorder: hist,
		Sleeper:  noSleep{},
		Guard:    active,
	})
	require.NoError(t, err)
	srv, err := NewServer(Dependencies{
		Sweeper:  sweeper,
		Messages: chat,
		History:  hist,
		Settings: sweep.DefaultSettings(),
	}, "stdio", nil)
	require.NoError(t, err)

	release, err := active.Acquire(context.Background(), "42", "op-running")
	require.NoError(t, err)

	_, err = srv.handleDelete(context.Background(), callRequest("sweep_delete",
		map[string]interface{}{"channel_id": "42", "quantity": "all", "confirm": true}))
	require.Error(t, err)
	var withSuggestions *ErrorWithSuggestions
	require.ErrorAs(t, err, &withSuggestions)
	assert.Contains(t, err.Error(), "op-running")
	assert.Empty(t, chat.deleted)

	require.NoError(t, release())
	_, err = srv.handleDelete(context.Background(), callRequest("sweep_delete",
		map[string]interface{}{"channel_id": "42", "quantity": "all", "confirm": true}))
	require.NoError(t, err)
	assert.Len(t, chat.deleted, 2)
}

func TestSweepHistory(t *testing.T) {
	chat := newFakeChat(me, me, me)
	srv, _ := setupTestServer(t, chat, false)

	for i := 0; i < 3; i++ {
		_, _ = srv.handleDelete(context.Background(), callRequest("sweep_delete", map[string]interface{}{
			"channel_id": "42",
			"quantity":   "1",
		}))
	}

	result, err := srv.handleHistory(context.Background(), callRequest("sweep_history", map[string]interface{}{
		"limit": "2",
	}))
	require.NoError(t, err)

	var got []sweep.Result
	decodeResult(t, result, &got)
	assert.Len(t, got, 2)

	_, err = srv.handleHistory(context.Background(), callRequest("sweep_history", map[string]interface{}{
		"limit": "many",
	}))
	assert.Error(t, err)

	_, err = srv.handleHistory(context.Background(), callRequest("sweep_history", map[string]interface{}{
		"limit": 1e300,
	}))
	assert.Error(t, err)
}

func TestSweepMenu(t *testing.T) {
	chat := newFakeChat(me, "other")
	srv, _ := setupTestServer(t, chat, true)

	tests := []struct {
		name      string
		messageID string
		wantOwned bool
	}{
		{name: "own message", messageID: "002", wantOwned: true},
		{name: "foreign message", messageID: "001", wantOwned: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := srv.handleMenu(context.Background(), callRequest("sweep_menu", map[string]interface{}{
				"channel_id": "42",
				"message_id": tt.messageID,
			}))
			require.NoError(t, err)

			var got MenuResult
			decodeResult(t, result, &got)
			assert.Equal(t, tt.wantOwned, got.Owned)
			_, hasGroup := menu.Find(got.Items, menu.GroupID)
			assert.Equal(t, tt.wantOwned, hasGroup)
		})
	}
}

func TestErrorWithSuggestions(t *testing.T) {
	err := NothingFoundError("42")
	assert.True(t, strings.HasPrefix(err.Error(), "no messages found in channel 42"))
	assert.Contains(t, err.Error(), "sweep_preview")

	plain := NewErrorWithSuggestions("plain")
	assert.Equal(t, "plain", plain.Error())
}

func TestGetEnhancedDescription(t *testing.T) {
	for name := range toolDescriptions {
		desc := GetEnhancedDescription(name)
		assert.Contains(t, desc, "WHEN TO USE THIS TOOL")
		assert.NotEmpty(t, GetNextToolSuggestions(name))
	}
	assert.Empty(t, GetEnhancedDescription("unknown"))
}
