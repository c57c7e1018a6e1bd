// Package message defines the chat message model shared by the sweep pipeline,
// the REST adapter and the CLI.
package message

import (
	"time"
)

// Message is a chat message as seen by chatsweep. It is owned and mutated by
// the remote service; chatsweep only reads its identity and asks for deletion.
type Message struct {
	ID        string    `json:"id" yaml:"id"`
	ChannelID string    `json:"channel_id" yaml:"channel_id"`
	AuthorID  string    `json:"author_id" yaml:"author_id"`
	Content   string    `json:"content,omitempty" yaml:"content,omitempty"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// OwnedBy reports whether the message was authored by the given actor.
func (m Message) OwnedBy(actorID string) bool {
	return actorID != "" && m.AuthorID == actorID
}

// Actor is the identity on whose behalf messages are filtered and deleted
type Actor struct {
	ID       string `json:"id" yaml:"id"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
}

// Request describes a single bulk-delete invocation
type Request struct {
	ChannelID string
	Quantity  Quantity
}

// Outcome is the terminal tally of a delete pass
type Outcome struct {
	Succeeded int `json:"succeeded" yaml:"succeeded"`
	Failed    int `json:"failed" yaml:"failed"`
}

// Total returns the number of messages processed
func (o Outcome) Total() int {
	return o.Succeeded + o.Failed
}

// HasFailures reports whether any delete call failed
func (o Outcome) HasFailures() bool {
	return o.Failed > 0
}
