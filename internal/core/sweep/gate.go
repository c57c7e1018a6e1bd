package sweep

import (
	"context"
	"fmt"

	"github.com/aki/chatsweep/internal/core/message"
)

// PromptFor describes the consequence of deleting q messages
func PromptFor(q message.Quantity) Prompt {
	if q.IsUnbounded() {
		return Prompt{
			Title:  "Delete ALL messages",
			Body:   "Do you want to delete ALL your messages in this conversation? This action cannot be undone.",
			Danger: true,
		}
	}
	return Prompt{
		Title: fmt.Sprintf("Delete %d messages", int(q)),
		Body:  fmt.Sprintf("Do you want to delete your last %d messages?", int(q)),
	}
}

// Gate decides whether a run may proceed. Without required confirmation it
// always proceeds; otherwise the confirmer's answer decides.
func Gate(ctx context.Context, confirmer Confirmer, settings Settings, q message.Quantity) (bool, error) {
	if !settings.RequireConfirmation {
		return true, nil
	}
	if confirmer == nil {
		return false, fmt.Errorf("confirmation required but no confirmer is available")
	}
	return confirmer.Confirm(ctx, PromptFor(q))
}

// Summarize builds the notification for a finished delete pass
func Summarize(outcome message.Outcome) Summary {
	text := fmt.Sprintf("%d messages deleted", outcome.Succeeded)
	if outcome.HasFailures() {
		return Summary{
			Message: fmt.Sprintf("%s, %d errors", text, outcome.Failed),
			Kind:    SummaryFailure,
		}
	}
	return Summary{Message: text, Kind: SummarySuccess}
}
