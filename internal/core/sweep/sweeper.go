package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aki/chatsweep/internal/core/logger"
	"github.com/aki/chatsweep/internal/core/message"
)

// Status is the terminal state of an operation
type Status string

const (
	// StatusCompleted means the delete pass ran over every collected message
	StatusCompleted Status = "completed"
	// StatusAborted means confirmation was declined; no call was made
	StatusAborted Status = "aborted"
	// StatusNothingFound means collection returned no messages
	StatusNothingFound Status = "nothing_found"
	// StatusInterrupted means the context ended during the delete pass; the
	// unattempted messages are counted as failed
	StatusInterrupted Status = "interrupted"
	// StatusActorUnavailable means the current user could not be resolved
	StatusActorUnavailable Status = "actor_unavailable"
)

// Result describes one finished operation
type Result struct {
	OperationID string           `json:"operation_id" yaml:"id"`
	ChannelID   string           `json:"channel_id" yaml:"channel_id"`
	Quantity    message.Quantity `json:"quantity" yaml:"quantity"`
	Status      Status           `json:"status" yaml:"status"`
	Collected   int              `json:"collected" yaml:"collected"`
	Outcome     message.Outcome  `json:"outcome" yaml:"outcome"`
	StartedAt   time.Time        `json:"started_at" yaml:"started_at"`
	FinishedAt  time.Time        `json:"finished_at" yaml:"finished_at"`
}

// Recorder persists terminal results
type Recorder interface {
	Record(ctx context.Context, result Result) error
}

// Dependencies wires a Sweeper to its collaborators. Lister, Remover and
// Actors are required.
type Dependencies struct {
	Lister    Lister
	Remover   Remover
	Actors    ActorResolver
	Confirmer Confirmer
	Notifier  Notifier
	Recorder  Recorder
	Sleeper   Sleeper
	Observer  Observer
	Guard     ChannelGuard
	Logger    logger.Logger

	// PageDelay defaults to DefaultPageDelay when zero
	PageDelay time.Duration
	// MaxPages of 0 disables the page cap; negative selects DefaultMaxPages
	MaxPages int
}

// Sweeper runs the confirm → collect → delete → notify pipeline
type Sweeper struct {
	actors    ActorResolver
	collector *Collector
	deleter   *Deleter
	confirmer Confirmer
	notifier  Notifier
	recorder  Recorder
	observer  Observer
	guard     ChannelGuard
	logger    logger.Logger

	now   func() time.Time
	newID func() string
}

// New creates a Sweeper
func New(deps Dependencies) (*Sweeper, error) {
	if deps.Lister == nil || deps.Remover == nil || deps.Actors == nil {
		return nil, errors.New("sweeper requires a lister, a remover and an actor resolver")
	}

	log := logger.OrNop(deps.Logger)
	sleeper := deps.Sleeper
	if sleeper == nil {
		sleeper = TimerSleeper{}
	}
	observer := deps.Observer
	if observer == nil {
		observer = NopObserver{}
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = NotifierFunc(func(context.Context, Summary) {})
	}
	pageDelay := deps.PageDelay
	if pageDelay <= 0 {
		pageDelay = DefaultPageDelay
	}
	maxPages := deps.MaxPages
	if maxPages < 0 {
		maxPages = DefaultMaxPages
	}

	return &Sweeper{
		actors: deps.Actors,
		collector: NewCollector(deps.Lister,
			WithPageDelay(pageDelay),
			WithMaxPages(maxPages),
			WithCollectorSleeper(sleeper),
			WithCollectorObserver(observer),
			WithCollectorLogger(log),
		),
		deleter: NewDeleter(deps.Remover,
			WithDeleterSleeper(sleeper),
			WithDeleterObserver(observer),
			WithDeleterLogger(log),
		),
		confirmer: deps.Confirmer,
		notifier:  notifier,
		recorder:  deps.Recorder,
		observer:  observer,
		guard:     deps.Guard,
		logger:    log,
		now:       time.Now,
		newID:     uuid.NewString,
	}, nil
}

func validateRequest(req message.Request) error {
	if req.ChannelID == "" {
		return errors.New("channel ID is required")
	}
	return req.Quantity.Validate()
}

// Preview resolves the actor and collects matching messages without deleting
func (s *Sweeper) Preview(ctx context.Context, req message.Request) (message.Actor, []message.Message, error) {
	if err := validateRequest(req); err != nil {
		return message.Actor{}, nil, err
	}

	actor, err := s.resolveActor(ctx)
	if err != nil {
		return message.Actor{}, nil, err
	}

	return actor, s.collector.Collect(ctx, actor, req), nil
}

// Execute runs a full bulk delete. Declined confirmation yields a result
// with StatusAborted and a nil error. ErrActorUnavailable and ErrNothingFound
// abort before any delete call; every other failure is reflected in the
// outcome counts. With a ChannelGuard, a busy channel fails before the
// confirmation is shown.
func (s *Sweeper) Execute(ctx context.Context, req message.Request, settings Settings) (Result, error) {
	if err := validateRequest(req); err != nil {
		return Result{}, err
	}
	if err := settings.Validate(); err != nil {
		return Result{}, err
	}

	result := Result{
		OperationID: s.newID(),
		ChannelID:   req.ChannelID,
		Quantity:    req.Quantity,
		StartedAt:   s.now(),
	}
	log := s.logger.With("operation_id", result.OperationID, "channel_id", req.ChannelID)

	if settings.OutsideRecommendedRange() {
		log.Warn("delete delay outside recommended range",
			"delay_ms", settings.DelayMs,
			"min", MinRecommendedDelayMs,
			"max", MaxRecommendedDelayMs,
		)
	}

	if s.guard != nil {
		release, err := s.guard.Acquire(ctx, req.ChannelID, result.OperationID)
		if err != nil {
			return result, err
		}
		defer func() {
			if err := release(); err != nil {
				log.Warn("failed to release channel slot", "error", err)
			}
		}()
	}

	proceed, err := Gate(ctx, s.confirmer, settings, req.Quantity)
	if err != nil {
		return result, fmt.Errorf("confirmation failed: %w", err)
	}
	if !proceed {
		log.Info("bulk delete declined")
		return s.finish(result, StatusAborted), nil
	}

	actor, err := s.resolveActor(ctx)
	if err != nil {
		return s.finish(result, StatusActorUnavailable), err
	}
	log = log.With("actor_id", actor.ID)

	items := s.collector.Collect(ctx, actor, req)
	result.Collected = len(items)
	if len(items) == 0 {
		s.notifier.Notify(ctx, Summary{Message: "No messages found", Kind: SummaryFailure})
		result = s.finish(result, StatusNothingFound)
		s.record(ctx, log, result)
		return result, ErrNothingFound
	}

	log.Info("deleting messages", "count", len(items), "delay_ms", settings.DelayMs)
	result.Outcome = s.deleter.DeleteAll(ctx, req.ChannelID, items, settings.Delay())
	status := StatusCompleted
	if ctx.Err() != nil {
		status = StatusInterrupted
	}
	result = s.finish(result, status)

	s.notifier.Notify(ctx, Summarize(result.Outcome))
	s.record(ctx, log, result)
	log.Info("bulk delete finished",
		"status", result.Status,
		"succeeded", result.Outcome.Succeeded,
		"failed", result.Outcome.Failed,
		"duration", result.FinishedAt.Sub(result.StartedAt),
	)

	return result, nil
}

func (s *Sweeper) resolveActor(ctx context.Context) (message.Actor, error) {
	actor, err := s.actors.CurrentActor(ctx)
	if err != nil {
		if errors.Is(err, ErrActorUnavailable) {
			return message.Actor{}, err
		}
		return message.Actor{}, fmt.Errorf("%w: %v", ErrActorUnavailable, err)
	}
	if actor.ID == "" {
		return message.Actor{}, ErrActorUnavailable
	}
	return actor, nil
}

func (s *Sweeper) finish(result Result, status Status) Result {
	result.Status = status
	result.FinishedAt = s.now()
	s.observer.OperationFinished(status, result.Outcome)
	return result
}

func (s *Sweeper) record(ctx context.Context, log logger.Logger, result Result) {
	if s.recorder == nil {
		return
	}
	// The record outlives a cancelled operation
	if err := s.recorder.Record(context.WithoutCancel(ctx), result); err != nil {
		log.Warn("failed to record operation history", "error", err)
	}
}
