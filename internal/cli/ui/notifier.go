package ui

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aki/chatsweep/internal/core/message"
	"github.com/aki/chatsweep/internal/core/sweep"
)

var (
	_ sweep.Notifier = (*Notifier)(nil)
	_ sweep.Observer = (*Progress)(nil)
)

// Notifier prints operation summaries
type Notifier struct{}

// NewNotifier creates a terminal notifier
func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Notify(_ context.Context, summary sweep.Summary) {
	if summary.Kind == sweep.SummarySuccess {
		Success("%s", summary.Message)
		return
	}
	Warning("%s", summary.Message)
}

// Progress prints one line per delete attempt
type Progress struct {
	mu  sync.Mutex
	out io.Writer
}

// NewProgress creates a progress printer writing to Stderr
func NewProgress() *Progress {
	return &Progress{out: Stderr}
}

func (p *Progress) PageFetched(channelID string, raw, owned int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s\n", DimStyle.Render(fmt.Sprintf("  scanned %d messages, %d yours", raw, owned)))
}

func (p *Progress) DeleteAttempted(done, total int, msg message.Message, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	counter := fmt.Sprintf("[%d/%d]", done, total)
	if err != nil {
		fmt.Fprintf(p.out, "  %s %s %s\n", counter, WarningStyle.Render("failed "+msg.ID), DimStyle.Render(err.Error()))
		return
	}
	fmt.Fprintf(p.out, "  %s %s\n", counter, DimStyle.Render("deleted "+msg.ID))
}

func (p *Progress) OperationFinished(sweep.Status, message.Outcome) {}
