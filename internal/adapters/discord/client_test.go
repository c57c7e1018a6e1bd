package discord

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aki/chatsweep/internal/core/sweep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		BaseURL:   srv.URL,
		Token:     "secret",
		RateLimit: rate.Inf,
	})
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "https://example.com"})
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestClient_ListMessages(t *testing.T) {
	tests := []struct {
		name       string
		before     string
		wantBefore string
	}{
		{name: "first page", before: "", wantBefore: ""},
		{name: "with cursor", before: "900", wantBefore: "900"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/channels/42/messages", r.URL.Path)
				assert.Equal(t, "100", r.URL.Query().Get("limit"))
				assert.Equal(t, tt.wantBefore, r.URL.Query().Get("before"))
				_, hasBefore := r.URL.Query()["before"]
				assert.Equal(t, tt.wantBefore != "", hasBefore)
				assert.Equal(t, "secret", r.Header.Get("Authorization"))

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[
					{"id":"3","channel_id":"42","author":{"id":"me","username":"aki"},"content":"c","timestamp":"2024-05-01T10:00:00Z"},
					{"id":"2","author":{"id":"other"},"content":"b","timestamp":"2024-05-01T09:00:00Z"}
				]`))
			}))

			msgs, err := c.ListMessages(context.Background(), "42", tt.before, 100)
			require.NoError(t, err)
			require.Len(t, msgs, 2)

			assert.Equal(t, "3", msgs[0].ID)
			assert.Equal(t, "me", msgs[0].AuthorID)
			assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), msgs[0].Timestamp.UTC())
			assert.Equal(t, "other", msgs[1].AuthorID)
			assert.Equal(t, "42", msgs[1].ChannelID, "missing channel id is filled from the request")
		})
	}
}

func TestClient_DeleteMessage(t *testing.T) {
	var gotPath, gotMethod string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, c.DeleteMessage(context.Background(), "42", "7"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/channels/42/messages/7", gotPath)
}

func TestClient_ErrorsAreNotRetried(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   int
		msg    string
	}{
		{
			name:   "json envelope",
			status: http.StatusForbidden,
			body:   `{"code":50003,"message":"Cannot execute action"}`,
			code:   50003,
			msg:    "Cannot execute action",
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"message":"You are being rate limited.","retry_after":1.5}`,
			msg:    "You are being rate limited.",
		},
		{
			name:   "plain body",
			status: http.StatusBadGateway,
			body:   "bad gateway",
			msg:    "bad gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mu sync.Mutex
			calls := 0
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				mu.Lock()
				calls++
				mu.Unlock()
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))

			err := c.DeleteMessage(context.Background(), "42", "7")
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.msg, apiErr.Message)
			assert.Equal(t, tt.status == http.StatusTooManyRequests, apiErr.IsRateLimited())
			assert.Equal(t, 1, calls)
		})
	}
}

func TestClient_CurrentActor(t *testing.T) {
	t.Run("resolves user", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users/@me", r.URL.Path)
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "me", "username": "aki"})
		}))

		actor, err := c.CurrentActor(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "me", actor.ID)
		assert.Equal(t, "aki", actor.Username)
	})

	t.Run("unauthorized maps to actor unavailable", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":0,"message":"401: Unauthorized"}`))
		}))

		_, err := c.CurrentActor(context.Background())
		assert.ErrorIs(t, err, sweep.ErrActorUnavailable)
		assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	})

	t.Run("empty id maps to actor unavailable", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))

		_, err := c.CurrentActor(context.Background())
		assert.ErrorIs(t, err, sweep.ErrActorUnavailable)
	})

	t.Run("server error is not actor unavailable", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		_, err := c.CurrentActor(context.Background())
		require.Error(t, err)
		assert.False(t, errors.Is(err, sweep.ErrActorUnavailable))
	})
}

func TestClient_GetMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/channels/42/messages/7", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"7","author":{"id":"me"},"content":"hi","timestamp":"2024-05-01T10:00:00Z"}`))
	}))

	msg, err := c.GetMessage(context.Background(), "42", "7")
	require.NoError(t, err)
	assert.Equal(t, "7", msg.ID)
	assert.Equal(t, "42", msg.ChannelID)
	assert.True(t, msg.OwnedBy("me"))
}

func TestClient_RateLimiterSpacesCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		BaseURL:   srv.URL,
		Token:     "secret",
		RateLimit: rate.Every(50 * time.Millisecond),
		RateBurst: 1,
	})
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, c.DeleteMessage(context.Background(), "42", "1"))
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestClient_CancelledContext(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListMessages(ctx, "42", "", 100)
	assert.Error(t, err)
}

func TestClient_ResponseSizeIsCapped(t *testing.T) {
	t.Run("oversized body is rejected", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"id":"1","content":"`))
			_, _ = w.Write([]byte(strings.Repeat("x", maxResponseBytes)))
			_, _ = w.Write([]byte(`"}]`))
		}))

		_, err := c.ListMessages(context.Background(), "42", "", 100)
		assert.ErrorIs(t, err, ErrResponseTooLarge)
	})

	t.Run("body at the cap is accepted", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			prefix := `{"id":"7","author":{"id":"me"},"content":"`
			suffix := `"}`
			_, _ = w.Write([]byte(prefix))
			_, _ = w.Write([]byte(strings.Repeat("x", maxResponseBytes-len(prefix)-len(suffix))))
			_, _ = w.Write([]byte(suffix))
		}))

		msg, err := c.GetMessage(context.Background(), "42", "7")
		require.NoError(t, err)
		assert.Equal(t, "7", msg.ID)
	})
}
