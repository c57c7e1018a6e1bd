// Package schedule runs unattended bulk deletes on cron expressions.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/adhocore/gronx"

	"github.com/aki/chatsweep/internal/core/config"
	"github.com/aki/chatsweep/internal/core/logger"
	"github.com/aki/chatsweep/internal/core/message"
)

// Entry is one scheduled purge
type Entry struct {
	Name      string           `json:"name"`
	ChannelID string           `json:"channel_id"`
	Quantity  message.Quantity `json:"quantity"`
	Cron      string           `json:"cron"`
}

// Request converts the entry into a pipeline request
func (e Entry) Request() message.Request {
	return message.Request{ChannelID: e.ChannelID, Quantity: e.Quantity}
}

// EntriesFromConfig converts the schedules section
func EntriesFromConfig(cfgs []config.ScheduleConfig) []Entry {
	entries := make([]Entry, 0, len(cfgs))
	for _, c := range cfgs {
		entries = append(entries, Entry{
			Name:      c.Name,
			ChannelID: c.ChannelID,
			Quantity:  c.Quantity,
			Cron:      c.Cron,
		})
	}
	return entries
}

// RunFunc executes one due entry
type RunFunc func(ctx context.Context, entry Entry) error

// NextRun is the next tick of an entry
type NextRun struct {
	Entry Entry     `json:"entry"`
	Next  time.Time `json:"next"`
}

// Scheduler evaluates entries once per minute and runs the due ones one
// after another
type Scheduler struct {
	entries []Entry
	run     RunFunc
	gron    *gronx.Gronx
	logger  logger.Logger
	now     func() time.Time
	after   func(time.Duration) <-chan time.Time
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithLogger sets the scheduler logger
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger.OrNop(l)
	}
}

// WithClock replaces time.Now and time.After
func WithClock(now func() time.Time, after func(time.Duration) <-chan time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
		if after != nil {
			s.after = after
		}
	}
}

// New validates every entry and creates a scheduler
func New(entries []Entry, run RunFunc, opts ...Option) (*Scheduler, error) {
	if run == nil {
		return nil, errors.New("schedule requires a run function")
	}

	gron := gronx.New()
	for _, e := range entries {
		if e.Name == "" {
			return nil, errors.New("schedule entry requires a name")
		}
		if !gron.IsValid(e.Cron) {
			return nil, fmt.Errorf("schedule %q: invalid cron expression %q", e.Name, e.Cron)
		}
		if err := e.Quantity.Validate(); err != nil {
			return nil, fmt.Errorf("schedule %q: %w", e.Name, err)
		}
	}

	s := &Scheduler{
		entries: entries,
		run:     run,
		gron:    gron,
		logger:  logger.Nop(),
		now:     time.Now,
		after:   time.After,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Entries returns the configured entries
func (s *Scheduler) Entries() []Entry {
	return s.entries
}

// Due returns the entries whose expression matches t, in config order
func (s *Scheduler) Due(t time.Time) []Entry {
	var due []Entry
	for _, e := range s.entries {
		ok, err := s.gron.IsDue(e.Cron, t)
		if err != nil {
			s.logger.Warn("failed to evaluate schedule", "schedule", e.Name, "error", err)
			continue
		}
		if ok {
			due = append(due, e)
		}
	}
	return due
}

// Tick runs every entry due at t sequentially and returns how many ran.
// A failing entry is logged and does not stop the others.
func (s *Scheduler) Tick(ctx context.Context, t time.Time) int {
	ran := 0
	for _, e := range s.Due(t) {
		if ctx.Err() != nil {
			break
		}
		log := s.logger.With("schedule", e.Name, "channel_id", e.ChannelID)
		log.Info("running scheduled sweep", "quantity", e.Quantity.String())
		if err := s.run(ctx, e); err != nil {
			log.Warn("scheduled sweep failed", "error", err)
		}
		ran++
	}
	return ran
}

// Run ticks at the start of every minute until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "entries", len(s.entries))
	for {
		now := s.now()
		next := now.Truncate(time.Minute).Add(time.Minute)

		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return nil
		case <-s.after(next.Sub(now)):
		}

		s.Tick(ctx, next)
	}
}

// NextRuns lists the next tick after ref for every entry, soonest first
func (s *Scheduler) NextRuns(ref time.Time) ([]NextRun, error) {
	runs := make([]NextRun, 0, len(s.entries))
	for _, e := range s.entries {
		next, err := gronx.NextTickAfter(e.Cron, ref, false)
		if err != nil {
			return nil, fmt.Errorf("schedule %q: %w", e.Name, err)
		}
		runs = append(runs, NextRun{Entry: e, Next: next})
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Next.Before(runs[j].Next)
	})
	return runs, nil
}
