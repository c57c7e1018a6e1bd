package sweep

import (
	"context"
	"time"

	"github.com/aki/chatsweep/internal/core/logger"
	"github.com/aki/chatsweep/internal/core/message"
)

// Deleter removes messages one at a time with a fixed pause between calls
type Deleter struct {
	remover  Remover
	sleeper  Sleeper
	observer Observer
	logger   logger.Logger
}

// DeleterOption configures a Deleter
type DeleterOption func(*Deleter)

// WithDeleterSleeper replaces the real timer
func WithDeleterSleeper(s Sleeper) DeleterOption {
	return func(d *Deleter) {
		d.sleeper = s
	}
}

// WithDeleterObserver registers an observer for delete events
func WithDeleterObserver(o Observer) DeleterOption {
	return func(d *Deleter) {
		d.observer = o
	}
}

// WithDeleterLogger sets the logger
func WithDeleterLogger(l logger.Logger) DeleterOption {
	return func(d *Deleter) {
		d.logger = logger.OrNop(l)
	}
}

// NewDeleter creates a deleter issuing calls through remover
func NewDeleter(remover Remover, opts ...DeleterOption) *Deleter {
	d := &Deleter{
		remover:  remover,
		sleeper:  TimerSleeper{},
		observer: NopObserver{},
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DeleteAll issues one delete per item in order and waits delay between
// consecutive calls. Failures are counted and the pass continues. Every item
// is accounted for exactly once: once ctx is done the remaining items are
// counted as failed without issuing further calls.
func (d *Deleter) DeleteAll(ctx context.Context, channelID string, items []message.Message, delay time.Duration) message.Outcome {
	var outcome message.Outcome
	log := d.logger.With("channel_id", channelID)

	for i, msg := range items {
		err := ctx.Err()
		if err == nil {
			err = d.remover.DeleteMessage(ctx, channelID, msg.ID)
		}

		if err != nil {
			outcome.Failed++
			log.Warn("delete failed", "message_id", msg.ID, "error", err)
		} else {
			outcome.Succeeded++
			log.Debug("message deleted", "message_id", msg.ID, "progress", i+1, "total", len(items))
		}
		d.observer.DeleteAttempted(i+1, len(items), msg, err)

		if i < len(items)-1 {
			// A failed sleep means ctx is done; the next iteration notices.
			_ = d.sleeper.Sleep(ctx, delay)
		}
	}

	return outcome
}
