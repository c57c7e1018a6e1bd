// Package config provides configuration management for chatsweep.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aki/chatsweep/internal/filemanager"
	"gopkg.in/yaml.v3"
)

const (
	// HomeDir is the directory name for chatsweep state under the user's home
	HomeDir = ".chatsweep"
	// ConfigFile is the filename for the chatsweep configuration
	ConfigFile = "config.yaml"
	// HistoryFile is the filename for the operation history
	HistoryFile = "history.yaml"
	// ActiveFile is the filename for the running-sweep registry
	ActiveFile = "active.yaml"
	// HomeEnv overrides the state directory
	HomeEnv = "CHATSWEEP_HOME"
)

// ErrAlreadyInitialized is returned by Init when a config file exists
var ErrAlreadyInitialized = errors.New("configuration already exists")

// StateDir returns the chatsweep state directory
func StateDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, HomeDir), nil
}

// Manager handles chatsweep configuration
type Manager struct {
	configPath string
	files      *filemanager.Manager[Config]
}

// NewManager creates a configuration manager for path. An empty path uses
// the default location in the state directory.
func NewManager(path string) (*Manager, error) {
	if path == "" {
		dir, err := StateDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, ConfigFile)
	}
	return &Manager{
		configPath: path,
		files:      filemanager.NewManager[Config](),
	}, nil
}

// Load reads the configuration from disk. A missing file yields defaults.
func (m *Manager) Load() (*Config, error) {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.configPath, err)
	}
	return cfg, nil
}

// Parse validates data against the schema and decodes it on top of the
// defaults, so keys left out keep their default values.
func Parse(data []byte) (*Config, error) {
	if err := ValidateYAML(data); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to disk
func (m *Manager) Save(ctx context.Context, cfg *Config) error {
	if err := m.files.Write(ctx, m.configPath, cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Init writes the default configuration unless one exists already
func (m *Manager) Init(ctx context.Context, force bool) (*Config, error) {
	if m.IsInitialized() && !force {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInitialized, m.configPath)
	}
	cfg := DefaultConfig()
	if err := m.Save(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the file on disk without applying it
func (m *Manager) Validate() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("configuration file not found: %s", m.configPath)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	_, err = Parse(data)
	return err
}

// IsInitialized checks whether a config file exists
func (m *Manager) IsInitialized() bool {
	_, err := os.Stat(m.configPath)
	return err == nil
}

// GetConfigPath returns the configuration file path
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// GetStateDir returns the directory holding the config file
func (m *Manager) GetStateDir() string {
	return filepath.Dir(m.configPath)
}

// GetHistoryPath returns the history file next to the config file
func (m *Manager) GetHistoryPath() string {
	return filepath.Join(m.GetStateDir(), HistoryFile)
}

// applyDefaults fills fields that an explicit empty value would break
func applyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = "1.0"
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.API.TokenEnv == "" {
		cfg.API.TokenEnv = DefaultTokenEnv
	}
	if cfg.API.RateLimit == 0 {
		cfg.API.RateLimit = DefaultRateLimit
	}
	if cfg.API.RateBurst == 0 {
		cfg.API.RateBurst = DefaultRateBurst
	}
	if cfg.MCP.Transport.Type == "" {
		cfg.MCP.Transport.Type = "stdio"
	}
}

// GetActivePath returns the running-sweep registry next to the config file
func (m *Manager) GetActivePath() string {
	return filepath.Join(m.GetStateDir(), ActiveFile)
}
