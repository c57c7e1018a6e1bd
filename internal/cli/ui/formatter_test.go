package ui

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      OutputFormat
		wantError bool
	}{
		{
			name:  "empty string defaults to pretty",
			input: "",
			want:  FormatPretty,
		},
		{
			name:  "pretty format",
			input: "pretty",
			want:  FormatPretty,
		},
		{
			name:  "json format",
			input: "json",
			want:  FormatJSON,
		},
		{
			name:      "invalid format",
			input:     "xml",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantError {
				t.Errorf("ParseFormat() error = %v, wantError %v", err, tt.wantError)
				return
			}
			if got != tt.want {
				t.Errorf("ParseFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	oldOut, oldErr := Stdout, Stderr
	Stdout, Stderr = &buf, &buf
	t.Cleanup(func() { Stdout, Stderr = oldOut, oldErr })
	return &buf
}

func TestJSONFormatter_Output(t *testing.T) {
	buf := captureOutput(t)

	formatter := NewJSONFormatter()

	testData := map[string]string{
		"channel_id": "42",
		"status":     "completed",
	}

	if err := formatter.Output(testData); err != nil {
		t.Fatalf("Output() error = %v", err)
	}

	var result map[string]string
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse JSON output: %v", err)
	}

	if result["channel_id"] != "42" || result["status"] != "completed" {
		t.Errorf("Unexpected JSON output: %v", result)
	}
}

func TestPrettyFormatter_OutputError(t *testing.T) {
	buf := captureOutput(t)

	formatter := NewPrettyFormatter()
	if err := formatter.OutputError(errors.New("no messages found")); err != nil {
		t.Fatalf("OutputError() error = %v", err)
	}

	if !strings.Contains(buf.String(), "no messages found") {
		t.Errorf("OutputError() wrote %q", buf.String())
	}
}

func TestJSONFormatter_IsJSON(t *testing.T) {
	jsonFormatter := NewJSONFormatter()
	if !jsonFormatter.IsJSON() {
		t.Error("JSONFormatter.IsJSON() should return true")
	}

	prettyFormatter := NewPrettyFormatter()
	if prettyFormatter.IsJSON() {
		t.Error("PrettyFormatter.IsJSON() should return false")
	}
}

func TestSetGlobalFormatter(t *testing.T) {
	// Save original formatter
	original := GlobalFormatter
	defer func() { GlobalFormatter = original }()

	// Test setting JSON formatter
	err := SetGlobalFormatter(FormatJSON)
	if err != nil {
		t.Fatalf("SetGlobalFormatter(FormatJSON) error = %v", err)
	}
	if !GlobalFormatter.IsJSON() {
		t.Error("GlobalFormatter should be JSON formatter")
	}

	// Test setting pretty formatter
	err = SetGlobalFormatter(FormatPretty)
	if err != nil {
		t.Fatalf("SetGlobalFormatter(FormatPretty) error = %v", err)
	}
	if GlobalFormatter.IsJSON() {
		t.Error("GlobalFormatter should be pretty formatter")
	}
}

func TestWithFormatter(t *testing.T) {
	// Save original formatter
	original := GlobalFormatter
	defer func() { GlobalFormatter = original }()

	// Set initial formatter to pretty
	GlobalFormatter = NewPrettyFormatter()

	// Use WithFormatter to temporarily switch to JSON
	executed := false
	err := WithFormatter(FormatJSON, func() error {
		executed = true
		if !GlobalFormatter.IsJSON() {
			t.Error("GlobalFormatter should be JSON within function")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithFormatter() error = %v", err)
	}

	if !executed {
		t.Error("Function was not executed")
	}

	// Verify formatter was restored
	if GlobalFormatter.IsJSON() {
		t.Error("GlobalFormatter should be restored to pretty formatter")
	}
}
