package mcp

import (
	"fmt"
	"strings"
)

// ErrorWithSuggestions represents an error with tool suggestions
type ErrorWithSuggestions struct {
	Message     string
	Suggestions []string
}

// Error returns the error message with suggestions
func (e *ErrorWithSuggestions) Error() string {
	if len(e.Suggestions) == 0 {
		return e.Message
	}

	var sb strings.Builder
	sb.WriteString(e.Message)
	sb.WriteString("\n\nDid you mean to use one of these tools instead?\n")
	for _, suggestion := range e.Suggestions {
		sb.WriteString("  - ")
		sb.WriteString(suggestion)
		sb.WriteString("\n")
	}
	return sb.String()
}

// NewErrorWithSuggestions creates a new error with tool suggestions
func NewErrorWithSuggestions(message string, suggestions ...string) error {
	return &ErrorWithSuggestions{
		Message:     message,
		Suggestions: suggestions,
	}
}

// ActorUnavailableError is returned when the API token does not resolve to a user
func ActorUnavailableError(cause error) error {
	return NewErrorWithSuggestions(
		fmt.Sprintf("unable to resolve the current user: %v", cause),
		"Check that the API token environment variable is set for the server process",
		"sweep_history - Review earlier operations",
	)
}

// NothingFoundError is returned when a channel holds no messages of the user
func NothingFoundError(channelID string) error {
	return NewErrorWithSuggestions(
		fmt.Sprintf("no messages found in channel %s", channelID),
		"sweep_preview - Check which messages would be collected",
		"sweep_history - See whether an earlier sweep already removed them",
	)
}

// ChannelBusyError is returned when another sweep is running on the channel
func ChannelBusyError(cause error) error {
	return NewErrorWithSuggestions(
		cause.Error(),
		"Wait for the running sweep to finish, then call sweep_delete again",
		"sweep_history - Check the result of the running sweep once it ends",
	)
}

// InvalidParameterError returns an error with suggestions for invalid parameters
func InvalidParameterError(param string, expected string) error {
	return NewErrorWithSuggestions(
		fmt.Sprintf("invalid %s: expected %s", param, expected),
		"Use the tool descriptions to understand parameter requirements",
		"sweep_menu - List the quantities offered for a message",
	)
}
