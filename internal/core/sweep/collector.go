package sweep

import (
	"context"
	"time"

	"github.com/aki/chatsweep/internal/core/logger"
	"github.com/aki/chatsweep/internal/core/message"
)

const (
	// PageSize is the number of messages requested per page
	PageSize = 100
	// DefaultPageDelay is the pause between two page requests
	DefaultPageDelay = 200 * time.Millisecond
	// DefaultMaxPages caps page requests for a single collection. Zero disables the cap.
	DefaultMaxPages = 1000
)

// Collector pages backwards through a channel and keeps the actor's messages
type Collector struct {
	lister    Lister
	sleeper   Sleeper
	pageDelay time.Duration
	maxPages  int
	observer  Observer
	logger    logger.Logger
}

// CollectorOption configures a Collector
type CollectorOption func(*Collector)

// WithPageDelay overrides the inter-page pause
func WithPageDelay(d time.Duration) CollectorOption {
	return func(c *Collector) {
		c.pageDelay = d
	}
}

// WithMaxPages caps the number of page requests; 0 means no cap
func WithMaxPages(n int) CollectorOption {
	return func(c *Collector) {
		c.maxPages = n
	}
}

// WithCollectorSleeper replaces the real timer
func WithCollectorSleeper(s Sleeper) CollectorOption {
	return func(c *Collector) {
		c.sleeper = s
	}
}

// WithCollectorObserver registers an observer for page events
func WithCollectorObserver(o Observer) CollectorOption {
	return func(c *Collector) {
		c.observer = o
	}
}

// WithCollectorLogger sets the logger
func WithCollectorLogger(l logger.Logger) CollectorOption {
	return func(c *Collector) {
		c.logger = logger.OrNop(l)
	}
}

// NewCollector creates a collector reading pages from lister
func NewCollector(lister Lister, opts ...CollectorOption) *Collector {
	c := &Collector{
		lister:    lister,
		sleeper:   TimerSleeper{},
		pageDelay: DefaultPageDelay,
		maxPages:  DefaultMaxPages,
		observer:  NopObserver{},
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect returns up to req.Quantity messages authored by actor, newest
// first. It never fails: a page error ends collection and whatever was
// gathered so far is returned.
func (c *Collector) Collect(ctx context.Context, actor message.Actor, req message.Request) []message.Message {
	log := c.logger.With("channel_id", req.ChannelID, "quantity", req.Quantity.String())

	var (
		owned  []message.Message
		before string
	)

	for page := 1; ; page++ {
		batch, err := c.lister.ListMessages(ctx, req.ChannelID, before, PageSize)
		if err != nil {
			log.Warn("page request failed, keeping partial result",
				"page", page,
				"collected", len(owned),
				"error", err,
			)
			break
		}
		if len(batch) == 0 {
			break
		}

		kept := 0
		for _, msg := range batch {
			if msg.OwnedBy(actor.ID) {
				owned = append(owned, msg)
				kept++
			}
		}
		c.observer.PageFetched(req.ChannelID, len(batch), kept)
		log.Debug("page fetched", "page", page, "before", before, "raw", len(batch), "owned", kept)

		if req.Quantity.Reached(len(owned)) {
			break
		}
		// A short page is the oldest page of the channel
		if len(batch) < PageSize {
			break
		}
		if c.maxPages > 0 && page >= c.maxPages {
			log.Warn("page limit reached, stopping collection", "max_pages", c.maxPages, "collected", len(owned))
			break
		}

		// Advance from the raw page so foreign-only pages are skipped too
		before = batch[len(batch)-1].ID

		if err := c.sleeper.Sleep(ctx, c.pageDelay); err != nil {
			log.Warn("collection interrupted, keeping partial result", "collected", len(owned), "error", err)
			break
		}
	}

	return req.Quantity.Truncate(owned)
}
