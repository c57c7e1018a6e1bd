// Package menu builds the bulk-delete action list attached to a message.
//
// The action group is declared once as an ordered list of entries and is
// spliced into a host's own action list according to an explicit Placement.
package menu

import (
	"fmt"
	"strings"

	"github.com/aki/chatsweep/internal/core/message"
)

const (
	// GroupID identifies the bulk-delete submenu
	GroupID = "delete-bulk-messages"
	// HostDeleteID is the host's single-message delete action
	HostDeleteID = "delete"
)

// Kind distinguishes actions from separators and submenus
type Kind string

const (
	KindAction    Kind = "action"
	KindSeparator Kind = "separator"
	KindGroup     Kind = "group"
)

// Item is one entry of an action list
type Item struct {
	ID       string           `json:"id"`
	Label    string           `json:"label,omitempty"`
	Kind     Kind             `json:"kind"`
	Quantity message.Quantity `json:"quantity,omitempty"`
	Danger   bool             `json:"danger,omitempty"`
	Children []Item           `json:"children,omitempty"`
}

// Entry declares a bulk-delete choice
type Entry struct {
	Label     string
	Quantity  message.Quantity
	Danger    bool
	Separator bool
}

// DefaultEntries are the choices offered on an owned message
var DefaultEntries = []Entry{
	{Label: "Delete 10 messages", Quantity: 10},
	{Label: "Delete 50 messages", Quantity: 50},
	{Label: "Delete 100 messages", Quantity: 100},
	{Separator: true},
	{Label: "Delete ALL my messages", Quantity: message.Unbounded, Danger: true},
}

// EntryID returns the stable action ID for a quantity
func EntryID(q message.Quantity) string {
	return "delete-" + q.String()
}

// Group builds the bulk-delete submenu from entries
func Group(entries []Entry) Item {
	group := Item{
		ID:    GroupID,
		Label: "Bulk delete",
		Kind:  KindGroup,
	}
	for i, e := range entries {
		if e.Separator {
			group.Children = append(group.Children, Item{
				ID:   fmt.Sprintf("separator-%d", i),
				Kind: KindSeparator,
			})
			continue
		}
		group.Children = append(group.Children, Item{
			ID:       EntryID(e.Quantity),
			Label:    e.Label,
			Kind:     KindAction,
			Quantity: e.Quantity,
			Danger:   e.Danger,
		})
	}
	return group
}

// Placement decides where the group goes in the host list
type Placement struct {
	// Anchor is the host item to insert after. Empty means append.
	Anchor string
}

// AfterAnchor inserts after the host item with the given ID, or appends
// when the host has no such item
func AfterAnchor(id string) Placement {
	return Placement{Anchor: id}
}

// Append always adds the group at the end
func Append() Placement {
	return Placement{}
}

// Place returns a new list with group positioned according to policy.
// The host slice is left untouched.
func Place(host []Item, group Item, policy Placement) []Item {
	out := make([]Item, 0, len(host)+1)

	if policy.Anchor != "" {
		for i, item := range host {
			if item.ID == policy.Anchor {
				out = append(out, host[:i+1]...)
				out = append(out, group)
				return append(out, host[i+1:]...)
			}
		}
	}

	out = append(out, host...)
	return append(out, group)
}

// ForMessage returns the host list extended with the bulk-delete group, or
// the host list unchanged when the actor does not own msg
func ForMessage(host []Item, msg message.Message, actor message.Actor, policy Placement) []Item {
	if !msg.OwnedBy(actor.ID) {
		return host
	}
	return Place(host, Group(DefaultEntries), policy)
}

// Lookup resolves an action ID ("delete-50"), a bare quantity ("50") or
// "all" to a quantity offered by the menu
func Lookup(choice string) (message.Quantity, error) {
	key := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(choice)), "delete-")
	for _, e := range DefaultEntries {
		if e.Separator {
			continue
		}
		if key == e.Quantity.String() {
			return e.Quantity, nil
		}
	}
	return 0, fmt.Errorf("unknown bulk delete choice %q (expected one of %s)", choice, strings.Join(Choices(), ", "))
}

// Choices lists the quantities the menu offers
func Choices() []string {
	var out []string
	for _, e := range DefaultEntries {
		if !e.Separator {
			out = append(out, e.Quantity.String())
		}
	}
	return out
}

// Find returns the item with id anywhere in items
func Find(items []Item, id string) (Item, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
		if found, ok := Find(item.Children, id); ok {
			return found, true
		}
	}
	return Item{}, false
}

// DefaultHostItems approximates the client's own message actions
func DefaultHostItems() []Item {
	return []Item{
		{ID: "reply", Label: "Reply", Kind: KindAction},
		{ID: "edit", Label: "Edit message", Kind: KindAction},
		{ID: "copy-id", Label: "Copy message ID", Kind: KindAction},
		{ID: HostDeleteID, Label: "Delete message", Kind: KindAction, Danger: true},
	}
}
