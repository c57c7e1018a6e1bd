package config

import (
	"fmt"
	"time"

	"github.com/aki/chatsweep/internal/core/message"
	"github.com/aki/chatsweep/internal/core/sweep"
)

// Config represents the main chatsweep configuration
type Config struct {
	Version   string           `yaml:"version" json:"version"`
	API       APIConfig        `yaml:"api" json:"api"`
	Sweep     SweepConfig      `yaml:"sweep" json:"sweep"`
	Collector CollectorConfig  `yaml:"collector" json:"collector"`
	MCP       MCPConfig        `yaml:"mcp" json:"mcp"`
	Metrics   MetricsConfig    `yaml:"metrics" json:"metrics"`
	Schedules []ScheduleConfig `yaml:"schedules,omitempty" json:"schedules,omitempty"`
}

// APIConfig describes the chat REST endpoint
type APIConfig struct {
	BaseURL   string  `yaml:"base_url" json:"base_url"`
	TokenEnv  string  `yaml:"token_env" json:"token_env"`
	Timeout   string  `yaml:"timeout" json:"timeout"`
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit"`
	RateBurst int     `yaml:"rate_burst" json:"rate_burst"`
	UserAgent string  `yaml:"user_agent" json:"user_agent"`
}

// TimeoutDuration parses Timeout, falling back to the default on empty input
func (a APIConfig) TimeoutDuration() (time.Duration, error) {
	if a.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid api.timeout %q: %w", a.Timeout, err)
	}
	return d, nil
}

// SweepConfig holds the deleter settings
type SweepConfig struct {
	DelayMs             int  `yaml:"delay_ms" json:"delay_ms"`
	RequireConfirmation bool `yaml:"require_confirmation" json:"require_confirmation"`
}

// Settings converts the section into pipeline settings
func (s SweepConfig) Settings() sweep.Settings {
	return sweep.Settings{
		DelayMs:             s.DelayMs,
		RequireConfirmation: s.RequireConfirmation,
	}
}

// CollectorConfig holds the pagination settings
type CollectorConfig struct {
	PageDelayMs int `yaml:"page_delay_ms" json:"page_delay_ms"`
	MaxPages    int `yaml:"max_pages" json:"max_pages"`
}

// PageDelay returns the pause between two page requests
func (c CollectorConfig) PageDelay() time.Duration {
	return time.Duration(c.PageDelayMs) * time.Millisecond
}

// MCPConfig represents MCP server configuration
type MCPConfig struct {
	Transport TransportConfig `yaml:"transport" json:"transport"`
}

// TransportConfig represents MCP transport configuration
type TransportConfig struct {
	Type string     `yaml:"type" json:"type"`
	HTTP HTTPConfig `yaml:"http,omitempty" json:"http,omitempty"`
}

// HTTPConfig represents HTTP transport configuration
type HTTPConfig struct {
	Port int `yaml:"port" json:"port"`
}

// MetricsConfig controls the prometheus endpoint
type MetricsConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// ScheduleConfig is one unattended purge
type ScheduleConfig struct {
	Name      string           `yaml:"name" json:"name"`
	ChannelID string           `yaml:"channel_id" json:"channel_id"`
	Quantity  message.Quantity `yaml:"quantity" json:"quantity"`
	Cron      string           `yaml:"cron" json:"cron"`
}

const (
	// DefaultBaseURL is the chat REST API root
	DefaultBaseURL = "https://discord.com/api/v10"
	// DefaultTokenEnv is the environment variable holding the API token
	DefaultTokenEnv = "CHATSWEEP_TOKEN"
	// DefaultTimeout bounds a single HTTP request
	DefaultTimeout = 10 * time.Second
	// DefaultRateLimit is the client-side request ceiling per second
	DefaultRateLimit = 5.0
	// DefaultRateBurst is the limiter bucket size
	DefaultRateBurst = 1
	// DefaultUserAgent identifies chatsweep to the API
	DefaultUserAgent = "chatsweep"
	// DefaultMCPPort is used by the http transport
	DefaultMCPPort = 8765
	// DefaultMetricsAddr is where long-running commands expose metrics
	DefaultMetricsAddr = "127.0.0.1:9464"
)

// DefaultConfig returns the default chatsweep configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		API: APIConfig{
			BaseURL:   DefaultBaseURL,
			TokenEnv:  DefaultTokenEnv,
			Timeout:   DefaultTimeout.String(),
			RateLimit: DefaultRateLimit,
			RateBurst: DefaultRateBurst,
			UserAgent: DefaultUserAgent,
		},
		Sweep: SweepConfig{
			DelayMs:             sweep.DefaultDelayMs,
			RequireConfirmation: true,
		},
		Collector: CollectorConfig{
			PageDelayMs: int(sweep.DefaultPageDelay / time.Millisecond),
			MaxPages:    sweep.DefaultMaxPages,
		},
		MCP: MCPConfig{
			Transport: TransportConfig{
				Type: "stdio",
				HTTP: HTTPConfig{Port: DefaultMCPPort},
			},
		},
		Metrics: MetricsConfig{
			Addr: DefaultMetricsAddr,
		},
	}
}
