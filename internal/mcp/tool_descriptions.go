package mcp

import "strings"

// ToolDescription provides enhanced descriptions for AI agents
type ToolDescription struct {
	Description string
	WhenToUse   []string
	Examples    []string
	NextTools   []string
}

// Enhanced tool descriptions for better AI discoverability
var toolDescriptions = map[string]ToolDescription{
	"sweep_preview": {
		Description: "List the user's own messages in a channel that a bulk delete would remove, newest first. Makes list calls only, never deletes",
		WhenToUse: []string{
			"Before sweep_delete, to show the user what will be removed",
			"When asked how many of their messages a channel contains",
		},
		Examples: []string{
			`sweep_preview(channel_id: "1234567890", quantity: "50")`,
			`sweep_preview(channel_id: "1234567890", quantity: "all")`,
		},
		NextTools: []string{
			"sweep_delete - Delete the previewed messages",
		},
	},

	"sweep_delete": {
		Description: "Delete the user's most recent messages in a channel, one at a time with a pause between calls. Deletion cannot be undone. When confirmation is required the first call returns the confirmation prompt; call again with confirm=true after the user agrees",
		WhenToUse: []string{
			"When explicitly asked to delete the user's own messages",
			"After the user has approved the prompt returned by a previous call",
		},
		Examples: []string{
			`sweep_delete(channel_id: "1234567890", quantity: "10")`,
			`sweep_delete(channel_id: "1234567890", quantity: "all", confirm: true)`,
		},
		NextTools: []string{
			"sweep_history - Check the recorded outcome",
		},
	},

	"sweep_history": {
		Description: "List recent bulk delete operations with their status and success/failure counts, newest first",
		WhenToUse: []string{
			"When asked what was deleted earlier",
			"To check whether a scheduled sweep ran",
		},
		Examples: []string{
			`sweep_history(limit: "5")`,
		},
		NextTools: []string{
			"sweep_preview - Inspect a channel again",
		},
	},

	"sweep_menu": {
		Description: "Return the action menu for a message, including the bulk delete group when the message belongs to the current user",
		WhenToUse: []string{
			"When asked which bulk delete choices exist for a message",
		},
		Examples: []string{
			`sweep_menu(channel_id: "1234567890", message_id: "9876543210")`,
		},
		NextTools: []string{
			"sweep_delete - Run one of the offered choices",
		},
	},
}

// GetEnhancedDescription returns the enhanced description for a tool
func GetEnhancedDescription(toolName string) string {
	desc, ok := toolDescriptions[toolName]
	if !ok {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(desc.Description)
	sb.WriteString("\n\nWHEN TO USE THIS TOOL:\n")
	for _, when := range desc.WhenToUse {
		sb.WriteString("- " + when + "\n")
	}

	if len(desc.Examples) > 0 {
		sb.WriteString("\nEXAMPLES:\n")
		for _, example := range desc.Examples {
			sb.WriteString(example + "\n")
		}
	}

	return sb.String()
}

// GetNextToolSuggestions returns suggested next tools for a given tool
func GetNextToolSuggestions(toolName string) []map[string]string {
	desc, ok := toolDescriptions[toolName]
	if !ok {
		return nil
	}
	suggestions := make([]map[string]string, 0, len(desc.NextTools))
	for _, next := range desc.NextTools {
		suggestions = append(suggestions, map[string]string{
			"tool": next,
		})
	}
	return suggestions
}
