package sweep

import (
	"fmt"
	"time"
)

const (
	// DefaultDelayMs is the pause between two delete calls
	DefaultDelayMs = 500
	// MinRecommendedDelayMs is the lower end of the recommended delay range
	MinRecommendedDelayMs = 100
	// MaxRecommendedDelayMs is the upper end of the recommended delay range
	MaxRecommendedDelayMs = 2000
)

// Settings is the per-invocation configuration of a sweep
type Settings struct {
	DelayMs             int  `json:"delay_ms"`
	RequireConfirmation bool `json:"require_confirmation"`
}

// DefaultSettings returns a 500ms throttle with confirmation enabled
func DefaultSettings() Settings {
	return Settings{
		DelayMs:             DefaultDelayMs,
		RequireConfirmation: true,
	}
}

// Delay returns the throttle as a duration
func (s Settings) Delay() time.Duration {
	return time.Duration(s.DelayMs) * time.Millisecond
}

// Validate rejects negative delays
func (s Settings) Validate() error {
	if s.DelayMs < 0 {
		return fmt.Errorf("delay must not be negative: %dms", s.DelayMs)
	}
	return nil
}

// OutsideRecommendedRange reports whether the delay falls outside 100..2000ms
func (s Settings) OutsideRecommendedRange() bool {
	return s.DelayMs < MinRecommendedDelayMs || s.DelayMs > MaxRecommendedDelayMs
}
