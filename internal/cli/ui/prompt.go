package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/x/term"

	"github.com/aki/chatsweep/internal/core/sweep"
)

// ErrNotInteractive is returned when a confirmation is needed but stdin is
// not a terminal
var ErrNotInteractive = errors.New("confirmation required but stdin is not a terminal (use --yes)")

var _ sweep.Confirmer = (*Prompter)(nil)

// Prompter asks y/N questions on the terminal
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive func() bool

	// lines is fed by a single reader goroutine shared by every prompt
	once  sync.Once
	lines chan string
}

// NewPrompter creates a prompter reading from stdin
func NewPrompter() *Prompter {
	return &Prompter{
		in:  bufio.NewReader(os.Stdin),
		out: Stderr,
		interactive: func() bool {
			return term.IsTerminal(os.Stdin.Fd())
		},
	}
}

// NewPrompterWithIO creates a prompter over arbitrary streams, treated as
// interactive
func NewPrompterWithIO(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: func() bool { return true },
	}
}

// Confirm shows the prompt and waits for an answer. Only "y" or "yes"
// approve; anything else, including EOF, declines.
func (p *Prompter) Confirm(ctx context.Context, prompt sweep.Prompt) (bool, error) {
	if !p.interactive() {
		return false, ErrNotInteractive
	}

	title := BoldStyle.Render(prompt.Title)
	if prompt.Danger {
		title = DangerStyle.Render(prompt.Title)
	}
	fmt.Fprintf(p.out, "%s %s\n%s [y/N]: ", WarningIcon, title, prompt.Body)

	p.once.Do(func() {
		p.lines = make(chan string)
		go p.readLines()
	})

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return false, ctx.Err()
	case line, ok := <-p.lines:
		if !ok {
			return false, nil
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

// readLines delivers one line per receive and closes lines at EOF. It reads
// at most one line ahead of the prompt waiting on it.
func (p *Prompter) readLines() {
	for {
		line, err := p.in.ReadString('\n')
		if line != "" {
			p.lines <- line
		}
		if err != nil {
			close(p.lines)
			return
		}
	}
}
