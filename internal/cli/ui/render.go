package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/aki/chatsweep/internal/core/menu"
	"github.com/aki/chatsweep/internal/core/message"
	"github.com/aki/chatsweep/internal/core/schedule"
	"github.com/aki/chatsweep/internal/core/semaphore"
	"github.com/aki/chatsweep/internal/core/sweep"
)

const contentWidth = 60

// PrintPreview lists the messages a sweep would delete
func PrintPreview(actor message.Actor, msgs []message.Message) {
	if len(msgs) == 0 {
		Info("No messages found")
		return
	}

	tbl := NewTable("ID", "SENT", "CONTENT")
	for _, m := range msgs {
		content := strings.ReplaceAll(m.Content, "\n", " ")
		if content == "" {
			content = "-"
		}
		sent := "-"
		if !m.Timestamp.IsZero() {
			sent = m.Timestamp.Local().Format("2006-01-02 15:04")
		}
		tbl.AddRow(m.ID, sent, Truncate(content, contentWidth))
	}

	who := actor.Username
	if who == "" {
		who = actor.ID
	}
	PrintSectionHeader(MessageIcon, fmt.Sprintf("Messages by %s", who), len(msgs))
	tbl.Print()
	fmt.Fprintln(Stdout)
}

// PrintResult describes a finished operation
func PrintResult(r sweep.Result) {
	fmt.Fprintf(Stdout, "   %s %s\n", DimStyle.Render("Operation:"), r.OperationID)
	fmt.Fprintf(Stdout, "   %s %s\n", DimStyle.Render("Status:"), StatusText(r.Status))
	fmt.Fprintf(Stdout, "   %s %d collected, %d deleted, %d failed\n",
		DimStyle.Render("Messages:"), r.Collected, r.Outcome.Succeeded, r.Outcome.Failed)
	if !r.FinishedAt.IsZero() {
		fmt.Fprintf(Stdout, "   %s %s\n", DimStyle.Render("Took:"), FormatDuration(r.FinishedAt.Sub(r.StartedAt)))
	}
}

// PrintHistory lists recorded operations, newest first
func PrintHistory(results []sweep.Result, now time.Time) {
	if len(results) == 0 {
		Info("No operations recorded")
		return
	}

	tbl := NewTable("ID", "CHANNEL", "QUANTITY", "STATUS", "DELETED", "FAILED", "WHEN")
	for _, r := range results {
		tbl.AddRow(ShortID(r.OperationID), r.ChannelID, r.Quantity.String(), StatusText(r.Status),
			r.Outcome.Succeeded, r.Outcome.Failed, FormatTime(r.StartedAt, now))
	}

	PrintSectionHeader(HistoryIcon, "Operations", len(results))
	tbl.Print()
	fmt.Fprintln(Stdout)
}

// PrintMenu renders an action tree
func PrintMenu(items []menu.Item) {
	if len(items) == 0 {
		Info("No actions available")
		return
	}
	fmt.Fprintf(Stdout, "%s %s\n", MenuIcon, HeaderStyle.Render("Actions"))
	printItems(items, "  ")
}

func printItems(items []menu.Item, indent string) {
	for _, it := range items {
		switch it.Kind {
		case menu.KindSeparator:
			fmt.Fprintf(Stdout, "%s%s\n", indent, DimStyle.Render("──────────"))
		case menu.KindGroup:
			fmt.Fprintf(Stdout, "%s%s %s\n", indent, BoldStyle.Render(it.Label), DimStyle.Render("("+it.ID+")"))
			printItems(it.Children, indent+"  ")
		default:
			label := it.Label
			if it.Danger {
				label = DangerStyle.Render(label)
			}
			fmt.Fprintf(Stdout, "%s%s %s\n", indent, label, DimStyle.Render("("+it.ID+")"))
		}
	}
}

// PrintNextRuns lists upcoming scheduled sweeps
func PrintNextRuns(runs []schedule.NextRun, now time.Time) {
	if len(runs) == 0 {
		Info("No schedules configured")
		return
	}

	tbl := NewTable("NAME", "CHANNEL", "QUANTITY", "CRON", "NEXT")
	for _, r := range runs {
		tbl.AddRow(r.Entry.Name, r.Entry.ChannelID, r.Entry.Quantity.String(), r.Entry.Cron,
			fmt.Sprintf("%s (%s)", r.Next.Local().Format("2006-01-02 15:04"), FormatTime(r.Next, now)))
	}

	PrintSectionHeader(ScheduleIcon, "Schedules", len(runs))
	tbl.Print()
	fmt.Fprintln(Stdout)
}

// PrintActive lists running sweeps
func PrintActive(holders []semaphore.Holder, now time.Time) {
	if len(holders) == 0 {
		Info("No sweeps running")
		return
	}

	tbl := NewTable("OPERATION", "CHANNEL", "PID", "STARTED")
	for _, h := range holders {
		tbl.AddRow(ShortID(h.OperationID), h.ChannelID, h.PID, FormatTime(h.AcquiredAt, now))
	}

	PrintSectionHeader(MessageIcon, "Running sweeps", len(holders))
	tbl.Print()
	fmt.Fprintln(Stdout)
}
