package config

import (
	"errors"
	"fmt"

	"github.com/adhocore/gronx"
)

// ValidateConfig checks the rules the schema cannot express
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if err := cfg.Sweep.Settings().Validate(); err != nil {
		return fmt.Errorf("invalid sweep section: %w", err)
	}

	if _, err := cfg.API.TimeoutDuration(); err != nil {
		return err
	}

	if cfg.MCP.Transport.Type == "http" && cfg.MCP.Transport.HTTP.Port == 0 {
		return errors.New("mcp.transport.http.port is required for http transport")
	}

	seen := make(map[string]bool, len(cfg.Schedules))
	for i, s := range cfg.Schedules {
		if err := ValidateSchedule(s); err != nil {
			return fmt.Errorf("invalid schedule #%d: %w", i, err)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate schedule name %q", s.Name)
		}
		seen[s.Name] = true
	}

	return nil
}

// ValidateSchedule validates an individual schedule entry
func ValidateSchedule(s ScheduleConfig) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.ChannelID == "" {
		return errors.New("channel_id is required")
	}
	if err := s.Quantity.Validate(); err != nil {
		return err
	}
	if !gronx.IsValid(s.Cron) {
		return fmt.Errorf("invalid cron expression %q", s.Cron)
	}
	return nil
}
