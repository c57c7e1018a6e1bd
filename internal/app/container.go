// Package app provides dependency injection container for the application
package app

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/time/rate"

	"github.com/aki/chatsweep/internal/adapters/discord"
	"github.com/aki/chatsweep/internal/core/config"
	"github.com/aki/chatsweep/internal/core/history"
	"github.com/aki/chatsweep/internal/core/logger"
	"github.com/aki/chatsweep/internal/core/metrics"
	"github.com/aki/chatsweep/internal/core/semaphore"
	"github.com/aki/chatsweep/internal/core/sweep"
)

// Container holds all manager instances and their dependencies
type Container struct {
	ConfigManager *config.Manager
	Config        *config.Config
	Logger        logger.Logger

	History *history.Store
	Metrics *metrics.Metrics
	// Active tracks running sweeps, one per channel
	Active *semaphore.FileSemaphore

	// getenv is replaced in tests
	getenv func(string) string
	client *discord.Client
}

// NewContainer loads the configuration at configPath (default location when
// empty) and builds the components that need no API access
func NewContainer(configPath string, log logger.Logger) (*Container, error) {
	cm, err := config.NewManager(configPath)
	if err != nil {
		return nil, err
	}

	cfg, err := cm.Load()
	if err != nil {
		return nil, err
	}

	return &Container{
		ConfigManager: cm,
		Config:        cfg,
		Logger:        logger.OrNop(log),
		History:       history.NewStore(cm.GetHistoryPath()),
		Metrics:       metrics.New(),
		Active:        semaphore.New(cm.GetActivePath(), 1),
		getenv:        os.Getenv,
	}, nil
}

// Token reads the API token from the configured environment variable
func (c *Container) Token() (string, error) {
	name := c.Config.API.TokenEnv
	token := strings.TrimSpace(c.getenv(name))
	if token == "" {
		return "", fmt.Errorf("%w: set %s (a .env file in the working directory is also read)", discord.ErrMissingToken, name)
	}
	return token, nil
}

// Client returns the REST client, creating it on first use
func (c *Container) Client() (*discord.Client, error) {
	if c.client != nil {
		return c.client, nil
	}

	token, err := c.Token()
	if err != nil {
		return nil, err
	}
	timeout, err := c.Config.API.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	client, err := discord.NewClient(discord.Config{
		BaseURL:   c.Config.API.BaseURL,
		Token:     token,
		Timeout:   timeout,
		RateLimit: rate.Limit(c.Config.API.RateLimit),
		RateBurst: c.Config.API.RateBurst,
		UserAgent: c.Config.API.UserAgent,
	}, discord.WithLogger(c.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	c.client = client
	return client, nil
}

// SweeperOptions are the interactive collaborators of a sweeper
type SweeperOptions struct {
	Confirmer sweep.Confirmer
	Notifier  sweep.Notifier
	Observers []sweep.Observer
}

// NewSweeper wires a sweeper to the API client, history and metrics
func (c *Container) NewSweeper(opts SweeperOptions) (*sweep.Sweeper, error) {
	client, err := c.Client()
	if err != nil {
		return nil, err
	}

	observers := sweep.MultiObserver{c.Metrics}
	observers = append(observers, opts.Observers...)

	return sweep.New(sweep.Dependencies{
		Lister:    client,
		Remover:   client,
		Actors:    client,
		Confirmer: opts.Confirmer,
		Notifier:  opts.Notifier,
		Recorder:  c.History,
		Observer:  observers,
		Guard:     c.Active,
		Logger:    c.Logger,
		PageDelay: c.Config.Collector.PageDelay(),
		MaxPages:  c.Config.Collector.MaxPages,
	})
}

// Settings returns the configured sweep settings
func (c *Container) Settings() sweep.Settings {
	return c.Config.Sweep.Settings()
}
