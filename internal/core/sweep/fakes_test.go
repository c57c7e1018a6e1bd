package sweep

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aki/chatsweep/internal/core/message"
)

const (
	me      = "user-me"
	someone = "user-other"
)

// history builds a newest-first channel of n messages; owner decides the
// author of the i-th newest message.
func history(n int, owner func(i int) string) []message.Message {
	msgs := make([]message.Message, n)
	for i := 0; i < n; i++ {
		msgs[i] = message.Message{
			ID:        fmt.Sprintf("%06d", n-i),
			ChannelID: "chan-1",
			AuthorID:  owner(i),
		}
	}
	return msgs
}

func allMine(int) string { return me }

type listCall struct {
	before string
	limit  int
}

// fakeLister serves pages from an in-memory newest-first history
type fakeLister struct {
	mu       sync.Mutex
	messages []message.Message
	calls    []listCall
	failOn   int // 1-based call number that fails; 0 never fails
}

func (f *fakeLister) ListMessages(_ context.Context, _ string, before string, limit int) ([]message.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, listCall{before: before, limit: limit})
	if f.failOn > 0 && len(f.calls) == f.failOn {
		return nil, errors.New("gateway timeout")
	}

	start := 0
	if before != "" {
		start = len(f.messages)
		for i, m := range f.messages {
			if m.ID == before {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(f.messages) {
		end = len(f.messages)
	}
	page := make([]message.Message, end-start)
	copy(page, f.messages[start:end])
	return page, nil
}

// fakeRemover records delete calls and fails the configured IDs
type fakeRemover struct {
	mu    sync.Mutex
	calls []string
	at    []time.Time
	fail  map[string]bool
}

func (f *fakeRemover) DeleteMessage(_ context.Context, _ string, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, messageID)
	f.at = append(f.at, time.Now())
	if f.fail[messageID] {
		return errors.New("missing permissions")
	}
	return nil
}

// recordingSleeper records requested pauses without sleeping
type recordingSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waits = append(r.waits, d)
	return ctx.Err()
}

type fakeActors struct {
	actor message.Actor
	err   error
	calls int
}

func (f *fakeActors) CurrentActor(context.Context) (message.Actor, error) {
	f.calls++
	return f.actor, f.err
}

type fakeConfirmer struct {
	answer  bool
	err     error
	prompts []Prompt
}

func (f *fakeConfirmer) Confirm(_ context.Context, p Prompt) (bool, error) {
	f.prompts = append(f.prompts, p)
	return f.answer, f.err
}

type fakeNotifier struct {
	summaries []Summary
}

func (f *fakeNotifier) Notify(_ context.Context, s Summary) {
	f.summaries = append(f.summaries, s)
}

type fakeRecorder struct {
	results []Result
	ctxErrs []error
}

func (f *fakeRecorder) Record(ctx context.Context, r Result) error {
	f.results = append(f.results, r)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	return nil
}
