package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/aki/chatsweep/internal/core/sweep"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{500 * time.Millisecond, "500ms"},
		{2500 * time.Millisecond, "2.5s"},
		{5 * time.Minute, "5m"},
		{3 * time.Hour, "3h"},
		{50 * time.Hour, "2d"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatDuration(tt.d); got != tt.expected {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.expected)
			}
		})
	}
}

func TestFormatTime(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		t        time.Time
		expected string
	}{
		{"zero", time.Time{}, "never"},
		{"just now", now.Add(-10 * time.Second), "just now"},
		{"one minute", now.Add(-time.Minute), "1 minute ago"},
		{"minutes", now.Add(-5 * time.Minute), "5 minutes ago"},
		{"hours", now.Add(-3 * time.Hour), "3 hours ago"},
		{"one day", now.Add(-24 * time.Hour), "1 day ago"},
		{"old", time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC), "2024-01-02 03:04"},
		{"future", now.Add(90 * time.Second), "in 1m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTime(tt.t, now); got != tt.expected {
				t.Errorf("FormatTime() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in       string
		n        int
		expected string
	}{
		{"hello", 10, "hello"},
		{"hello world", 6, "hello…"},
		{"héllo", 3, "hé…"},
	}

	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.expected {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.expected)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := ShortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("ShortID() = %q", got)
	}
	if got := ShortID("abc"); got != "abc" {
		t.Errorf("ShortID() = %q", got)
	}
}

func TestStatusText(t *testing.T) {
	for _, s := range []sweep.Status{sweep.StatusCompleted, sweep.StatusAborted, sweep.StatusNothingFound, sweep.StatusInterrupted, sweep.StatusActorUnavailable, "other"} {
		if got := StatusText(s); !strings.Contains(got, string(s)) {
			t.Errorf("StatusText(%q) = %q", s, got)
		}
	}
}
