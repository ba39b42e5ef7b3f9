// Package orchestrator turns one "plan my trip" request into an assembled,
// persisted itinerary by coordinating the remote search, AI and save
// operations behind the gateway.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tripweave/itinerary-engine/pkg/errors"
	"github.com/tripweave/itinerary-engine/pkg/gateway"
	"github.com/tripweave/itinerary-engine/pkg/preferences"
	"github.com/tripweave/itinerary-engine/pkg/retry"
	"github.com/tripweave/itinerary-engine/pkg/sanitize"
	"github.com/tripweave/itinerary-engine/pkg/types"
)

// Result is the structured outcome of a generation. It is always returned,
// never an error: UIs branch on Success, Error and SaveError.
type Result struct {
	Success     bool                      `json:"success"`
	Data        *types.AssembledItinerary `json:"data,omitempty"`
	ItineraryID string                    `json:"itineraryId,omitempty"`
	Error       *errors.GenerationError   `json:"error,omitempty"`
	SaveError   string                    `json:"saveError,omitempty"`
	Diagnostics []types.Diagnostic        `json:"diagnostics,omitempty"`
}

func failure(err error) *Result {
	return &Result{Success: false, Error: errors.Normalize(err)}
}

// Orchestrator sequences one generation at a time
type Orchestrator struct {
	gateway  gateway.Gateway
	strategy Strategy
	policy   retry.Policy
	logger   *zap.Logger
	now      func() time.Time
	sink     ProgressSink
	progress *progressTracker

	mu         sync.Mutex
	generating bool
	runID      string
	cancel     context.CancelFunc
	lastErr    *errors.GenerationError
	unsaved    *types.AssembledItinerary
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

func WithStrategy(s Strategy) Option {
	return func(o *Orchestrator) { o.strategy = s }
}

func WithRetryPolicy(p retry.Policy) Option {
	return func(o *Orchestrator) { o.policy = p }
}

func WithProgressSink(sink ProgressSink) Option {
	return func(o *Orchestrator) { o.sink = sink }
}

// WithClock overrides the time source used for ages and timestamps
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an orchestrator calling gw. The default strategy is content-first.
func New(gw gateway.Gateway, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gateway:  gw,
		strategy: contentFirst{},
		policy:   retry.DefaultPolicy,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.progress = newProgressTracker(o.sink, o.logger, o.now)
	return o
}

// IsGenerating reports whether a generation is in flight
func (o *Orchestrator) IsGenerating() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.generating
}

// Progress returns the current progress snapshot
func (o *Orchestrator) Progress() Progress {
	return o.progress.snapshot()
}

// Error returns the error of the last failed run, if any
func (o *Orchestrator) Error() *errors.GenerationError {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// StrategyName returns the active strategy
func (o *Orchestrator) StrategyName() string {
	return o.strategy.Name()
}

// Cancel aborts the in-flight generation. Progress is back at initializing
// and the error cleared by the time it returns.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	cancel := o.cancel
	runID := o.runID
	o.cancel = nil
	o.runID = ""
	o.generating = false
	o.lastErr = nil
	o.progress.reset(runID)
	o.mu.Unlock()

	if cancel != nil {
		cancel()
		o.logger.Info("generation cancelled", zap.String("run_id", runID))
	}
}

// launch is one admitted run, not yet executed
type launch struct {
	runID  string
	ctx    context.Context
	cancel context.CancelFunc
}

// admit claims the single generation slot. A second caller is rejected
// while a run is in flight.
func (o *Orchestrator) admit(ctx context.Context) (*launch, *errors.GenerationError) {
	o.mu.Lock()
	if o.generating {
		o.mu.Unlock()
		return nil, errors.NewWithCode(errors.KindValidation, errors.CodeAlreadyRunning,
			"a generation is already in progress")
	}
	l := &launch{runID: uuid.New().String()}
	l.ctx, l.cancel = context.WithCancel(ctx)
	o.generating = true
	o.runID = l.runID
	o.cancel = l.cancel
	o.lastErr = nil
	started := o.progress.begin(l.runID)
	o.mu.Unlock()

	o.progress.publish(started)
	return l, nil
}

// GenerateItinerary runs one full generation for currentUser. The request
// is sanitized into a private copy and never modified.
func (o *Orchestrator) GenerateItinerary(ctx context.Context, req *types.GenerationRequest, currentUser *types.User) *Result {
	l, rejected := o.admit(ctx)
	if rejected != nil {
		return &Result{Success: false, Error: rejected}
	}
	return o.execute(l, req, currentUser)
}

// Start admits a generation and runs it in the background. It returns the
// run id at once; the result is delivered exactly once on the channel.
func (o *Orchestrator) Start(ctx context.Context, req *types.GenerationRequest, currentUser *types.User) (string, <-chan *Result, error) {
	l, rejected := o.admit(ctx)
	if rejected != nil {
		return "", nil, rejected
	}
	done := make(chan *Result, 1)
	go func() {
		done <- o.execute(l, req, currentUser)
	}()
	return l.runID, done, nil
}

func (o *Orchestrator) execute(l *launch, req *types.GenerationRequest, currentUser *types.User) (result *Result) {
	runID := l.runID
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("generation panicked", zap.String("run_id", runID), zap.Any("panic", r))
			result = failure(errors.NewWithCode(errors.KindUnknown, errors.CodePanic,
				fmt.Sprintf("unexpected failure: %v", r)))
		}

		cancelled := result.Error != nil && errors.IsCancelled(result.Error)

		o.mu.Lock()
		if o.runID == runID {
			o.generating = false
			o.runID = ""
			o.cancel = nil
			if !result.Success && !cancelled {
				o.lastErr = result.Error
			}
			if cancelled {
				o.progress.reset(runID)
			}
		}
		o.mu.Unlock()
		l.cancel()
	}()

	return o.run(l.ctx, runID, req, currentUser)
}

func (o *Orchestrator) run(ctx context.Context, runID string, req *types.GenerationRequest, currentUser *types.User) *Result {
	logger := o.logger.With(zap.String("run_id", runID), zap.String("strategy", o.strategy.Name()))

	run, err := o.prepare(runID, req, currentUser, logger)
	if err != nil {
		logger.Info("generation request rejected", zap.Error(err))
		return failure(err)
	}

	logger.Info("starting itinerary generation",
		zap.String("destination", run.Request.Destination),
		zap.Int("trip_days", run.TripDays),
		zap.String("travel_mode", string(run.Transport.Mode)),
		zap.Bool("search_flights", run.Transport.SearchFlights),
	)

	draft, err := o.strategy.Generate(ctx, run)
	if ctx.Err() != nil {
		return failure(errors.Cancelled())
	}
	if err != nil {
		logger.Error("itinerary generation failed", zap.Error(err))
		return failure(err)
	}

	record := Assemble(AssembleInput{
		ID:        uuid.New().String(),
		Run:       run,
		Draft:     draft,
		Strategy:  o.strategy.Name(),
		CreatedAt: o.now(),
	})

	if ctx.Err() != nil {
		return failure(errors.Cancelled())
	}
	run.Advance(StageSaving, 90, "Saving your itinerary")

	result := &Result{Success: true, Data: record, Diagnostics: record.Diagnostics}
	id, err := o.persist(ctx, record)
	switch {
	case ctx.Err() != nil:
		return failure(errors.Cancelled())
	case err != nil:
		logger.Warn("itinerary generated but not saved", zap.Error(err))
		result.SaveError = err.Error()
		o.mu.Lock()
		o.unsaved = record
		o.mu.Unlock()
	default:
		result.ItineraryID = id
	}

	run.Advance(StageDone, 100, "Your itinerary is ready")
	logger.Info("itinerary generation complete",
		zap.String("itinerary_id", record.ID),
		zap.Bool("saved", result.SaveError == ""),
		zap.Strings("degraded", record.DegradedSlices),
	)
	return result
}

// prepare validates and sanitizes the request before any remote call
func (o *Orchestrator) prepare(runID string, req *types.GenerationRequest, currentUser *types.User, logger *zap.Logger) (*Run, error) {
	if req == nil {
		return nil, errors.Validation("Generation request is required")
	}
	clean := sanitize.Request(req, sanitize.DefaultLimits)

	switch {
	case clean.Destination == "":
		return nil, errors.Validation("Destination is required")
	case clean.StartDate == "":
		return nil, errors.Validation("Start date is required")
	case clean.EndDate == "":
		return nil, errors.Validation("End date is required")
	}

	userID := resolveUserID(clean, currentUser)
	if userID == "" {
		return nil, errors.Validation("User ID is required")
	}

	days, err := TripDays(clean.StartDate, clean.EndDate)
	if err != nil {
		return nil, errors.Validation(err.Error())
	}
	start, _ := time.Parse(dateLayout, clean.StartDate)

	profile := preferences.WithDefaults(clean.PreferenceProfile)
	return &Run{
		ID:        runID,
		Request:   clean,
		UserID:    userID,
		Profile:   profile,
		Transport: ResolveTransport(clean),
		TripDays:  days,
		Start:     start,
		Logger:    logger,
		call:      o.call,
		advance: func(stage Stage, percent int, message string) {
			o.progress.advance(runID, stage, percent, message)
		},
	}, nil
}

// The explicit caller wins over the uid echoed in the request body
func resolveUserID(req *types.GenerationRequest, currentUser *types.User) string {
	if currentUser != nil && strings.TrimSpace(currentUser.UID) != "" {
		return strings.TrimSpace(currentUser.UID)
	}
	if req.UserInfo != nil {
		return strings.TrimSpace(req.UserInfo.UID)
	}
	return ""
}

func (o *Orchestrator) call(ctx context.Context, operation string, payload any, kind errors.Kind) (*gateway.Response, error) {
	return retry.ExecuteWithRetry(ctx, func() (*gateway.Response, error) {
		return o.gateway.Call(ctx, operation, payload)
	}, o.retryConfig(operation), kind)
}

func (o *Orchestrator) retryConfig(operation string) retry.Config {
	cfg := o.policy.Config(o.logger.With(zap.String("operation", operation)))
	cfg.OnRetry = func(attempt int, err *errors.GenerationError) {
		o.logger.Warn("remote operation failed, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.String("kind", string(err.Kind)),
			zap.String("correlation_id", err.CorrelationID),
		)
	}
	return cfg
}

// RetrySave retries persistence of the last itinerary whose save failed
func (o *Orchestrator) RetrySave(ctx context.Context) *Result {
	o.mu.Lock()
	if o.generating {
		o.mu.Unlock()
		return failure(errors.NewWithCode(errors.KindValidation, errors.CodeAlreadyRunning,
			"a generation is already in progress"))
	}
	record := o.unsaved
	o.mu.Unlock()

	if record == nil {
		return failure(errors.Validation("No unsaved itinerary to retry"))
	}

	result := &Result{Success: true, Data: record, Diagnostics: record.Diagnostics}
	id, err := o.persist(ctx, record)
	if err != nil {
		o.logger.Warn("retrying save failed", zap.String("itinerary_id", record.ID), zap.Error(err))
		result.SaveError = err.Error()
		return result
	}

	o.mu.Lock()
	if o.unsaved == record {
		o.unsaved = nil
	}
	o.mu.Unlock()

	result.ItineraryID = id
	return result
}
