// Package sweep implements the bulk-delete pipeline: a paginated collector
// that gathers the actor's own messages, a throttled deleter that removes
// them one at a time, and the orchestration that ties both to a
// confirmation gate and a notifier.
package sweep

import (
	"context"
	"errors"

	"github.com/aki/chatsweep/internal/core/message"
)

var (
	// ErrActorUnavailable is returned when the current user cannot be resolved
	ErrActorUnavailable = errors.New("unable to resolve current user")
	// ErrNothingFound is returned when collection yields no messages
	ErrNothingFound = errors.New("no messages found")
)

// Lister returns one newest-first page of channel messages older than before.
// An empty before requests the newest page. An empty page means the end of
// the channel history.
type Lister interface {
	ListMessages(ctx context.Context, channelID, before string, limit int) ([]message.Message, error)
}

// Remover deletes a single message
type Remover interface {
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

// ActorResolver resolves the identity the sweep runs as
type ActorResolver interface {
	CurrentActor(ctx context.Context) (message.Actor, error)
}

// Prompt is the text presented before a destructive run
type Prompt struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Danger bool   `json:"danger,omitempty"`
}

// Confirmer asks a human to approve a prompt
type Confirmer interface {
	Confirm(ctx context.Context, prompt Prompt) (bool, error)
}

// ChannelGuard serializes bulk deletes per channel. Acquire fails when the
// channel is already being swept; the returned function releases the slot.
type ChannelGuard interface {
	Acquire(ctx context.Context, channelID, operationID string) (release func() error, err error)
}

// SummaryKind classifies a final summary
type SummaryKind string

const (
	// SummarySuccess means every delete call succeeded
	SummarySuccess SummaryKind = "success"
	// SummaryFailure means at least one call failed or nothing was done
	SummaryFailure SummaryKind = "failure"
)

// Summary is the user-facing result of an operation
type Summary struct {
	Message string      `json:"message"`
	Kind    SummaryKind `json:"kind"`
}

// Notifier displays summaries
type Notifier interface {
	Notify(ctx context.Context, summary Summary)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, summary Summary)

// Notify implements Notifier
func (f NotifierFunc) Notify(ctx context.Context, summary Summary) {
	f(ctx, summary)
}

// ConfirmerFunc adapts a function to Confirmer
type ConfirmerFunc func(ctx context.Context, prompt Prompt) (bool, error)

// Confirm implements Confirmer
func (f ConfirmerFunc) Confirm(ctx context.Context, prompt Prompt) (bool, error) {
	return f(ctx, prompt)
}

// AutoConfirm approves every prompt. Used for --yes and scheduled runs.
var AutoConfirm Confirmer = ConfirmerFunc(func(context.Context, Prompt) (bool, error) {
	return true, nil
})
