package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rodaine/table"

	"github.com/aki/chatsweep/internal/core/sweep"
)

// shortIDLength is how much of an operation ID listings show
const shortIDLength = 8

// NewTable creates a table writing to Stdout with bold headers and a bold
// first column
func NewTable(headers ...interface{}) table.Table {
	tbl := table.New(headers...)

	tbl.WithHeaderFormatter(func(format string, vals ...interface{}) string {
		return HeaderStyle.Render(fmt.Sprintf(format, vals...))
	})
	tbl.WithFirstColumnFormatter(func(format string, vals ...interface{}) string {
		return BoldStyle.Render(fmt.Sprintf(format, vals...))
	})
	tbl.WithPadding(2)
	// ANSI-aware width so styled cells stay aligned
	tbl.WithWidthFunc(lipgloss.Width)
	tbl.WithWriter(Stdout)

	return tbl
}

// PrintSectionHeader prints "icon title (count)" above a listing
func PrintSectionHeader(icon string, title string, count int) {
	OutputLine("\n%s %s (%d)", icon, title, count)
}

// ShortID returns the prefix of an operation ID shown in listings
func ShortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}

// StatusText colors an operation status
func StatusText(status sweep.Status) string {
	switch status {
	case sweep.StatusCompleted:
		return SuccessStyle.Render(string(status))
	case sweep.StatusAborted, sweep.StatusNothingFound, sweep.StatusInterrupted:
		return WarningStyle.Render(string(status))
	case sweep.StatusActorUnavailable:
		return ErrorStyle.Render(string(status))
	default:
		return string(status)
	}
}
