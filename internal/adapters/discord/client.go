// Package discord implements the sweep ports against a Discord-style chat
// REST API: newest-first message pages with a "before" cursor, single
// message deletion and current-user lookup.
package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aki/chatsweep/internal/core/logger"
	"github.com/aki/chatsweep/internal/core/message"
	"github.com/aki/chatsweep/internal/core/sweep"
	"golang.org/x/time/rate"
)

var (
	_ sweep.Lister        = (*Client)(nil)
	_ sweep.Remover       = (*Client)(nil)
	_ sweep.ActorResolver = (*Client)(nil)
)

// ErrMissingToken is returned when no API token is configured
var ErrMissingToken = errors.New("api token is empty")

// ErrResponseTooLarge is returned when a response body exceeds maxResponseBytes
var ErrResponseTooLarge = errors.New("response body too large")

// A full page of 100 messages is well under 1 MiB
const maxResponseBytes = 8 << 20

// Config holds the configuration for the REST client
type Config struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	RateLimit rate.Limit
	RateBurst int
	UserAgent string
}

// DefaultConfig returns a 10s timeout and a 5 rps ceiling
func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://discord.com/api/v10",
		Timeout:   10 * time.Second,
		RateLimit: rate.Limit(5),
		RateBurst: 1,
		UserAgent: "chatsweep",
	}
}

// Client talks to the chat REST API. Every call waits on a shared limiter
// so listing, deleting and user lookups together stay under the ceiling.
// Failed calls are never retried.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the client logger
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		c.logger = logger.OrNop(l)
	}
}

// NewClient creates a client for cfg
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, ErrMissingToken
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("api base url is empty")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}

	defaults := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaults.RateLimit
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = defaults.RateBurst
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(cfg.RateLimit, cfg.RateBurst),
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type apiUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type apiMessage struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	Author    apiUser   `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func (m apiMessage) toMessage() message.Message {
	return message.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		AuthorID:  m.Author.ID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
}

// ListMessages fetches one newest-first page of up to limit messages older
// than before
func (c *Client) ListMessages(ctx context.Context, channelID, before string, limit int) ([]message.Message, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if before != "" {
		query.Set("before", before)
	}

	var page []apiMessage
	path := "/channels/" + url.PathEscape(channelID) + "/messages?" + query.Encode()
	if err := c.do(ctx, http.MethodGet, path, &page); err != nil {
		return nil, fmt.Errorf("list messages in %s: %w", channelID, err)
	}

	msgs := make([]message.Message, 0, len(page))
	for _, m := range page {
		msg := m.toMessage()
		if msg.ChannelID == "" {
			msg.ChannelID = channelID
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// GetMessage fetches a single message
func (c *Client) GetMessage(ctx context.Context, channelID, messageID string) (message.Message, error) {
	var m apiMessage
	path := "/channels/" + url.PathEscape(channelID) + "/messages/" + url.PathEscape(messageID)
	if err := c.do(ctx, http.MethodGet, path, &m); err != nil {
		return message.Message{}, fmt.Errorf("get message %s: %w", messageID, err)
	}
	msg := m.toMessage()
	if msg.ChannelID == "" {
		msg.ChannelID = channelID
	}
	return msg, nil
}

// DeleteMessage deletes one message
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	path := "/channels/" + url.PathEscape(channelID) + "/messages/" + url.PathEscape(messageID)
	if err := c.do(ctx, http.MethodDelete, path, nil); err != nil {
		return fmt.Errorf("delete message %s: %w", messageID, err)
	}
	return nil
}

// CurrentActor resolves the token's user. An unauthorized token maps to
// sweep.ErrActorUnavailable.
func (c *Client) CurrentActor(ctx context.Context) (message.Actor, error) {
	var u apiUser
	if err := c.do(ctx, http.MethodGet, "/users/@me", &u); err != nil {
		if StatusCode(err) == http.StatusUnauthorized {
			return message.Actor{}, fmt.Errorf("%w: %w", sweep.ErrActorUnavailable, err)
		}
		return message.Actor{}, fmt.Errorf("resolve current user: %w", err)
	}
	if u.ID == "" {
		return message.Actor{}, fmt.Errorf("%w: empty user id", sweep.ErrActorUnavailable)
	}
	return message.Actor{ID: u.ID, Username: u.Username}, nil
}

func (c *Client) do(ctx context.Context, method, path string, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("failed to close response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxResponseBytes {
		return fmt.Errorf("%w: more than %d bytes from %s %s", ErrResponseTooLarge, maxResponseBytes, method, path)
	}

	c.logger.Debug("api call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp.StatusCode, body)
	}

	if result == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
