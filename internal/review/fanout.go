package review

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/RevCBH/crosscritic/internal/events"
	"github.com/RevCBH/crosscritic/internal/metrics"
	"github.com/RevCBH/crosscritic/internal/provider"
)

// Publisher abstracts event publishing for testing
type Publisher interface {
	Emit(e events.Event)
}

type nopPublisher struct{}

func (nopPublisher) Emit(events.Event) {}

// DeadlineMode selects how the batch timeout is applied while collecting.
type DeadlineMode string

const (
	// DeadlinePerTask waits up to the timeout for each reviewer in input
	// order. The first wait that expires marks every reviewer without a
	// result as timed out and stops waiting.
	DeadlinePerTask DeadlineMode = "per_task"

	// DeadlineShared bounds the whole collection by a single timeout.
	DeadlineShared DeadlineMode = "shared"
)

// CallerOptions configures a Caller. Zero values select defaults.
type CallerOptions struct {
	// CallTimeout is the reviewers' own per-call timeout. Only used to
	// derive Timeout when that is unset.
	CallTimeout time.Duration

	// Timeout bounds waiting for results. Default: 1.5 x CallTimeout.
	Timeout time.Duration

	// DeadlineMode defaults to DeadlinePerTask.
	DeadlineMode DeadlineMode

	// Vocabulary used for consensus and conflicts. Default: DefaultVocabulary().
	Vocabulary Vocabulary

	Logger    *zap.Logger
	Publisher Publisher
	Metrics   *metrics.Collector
	Tracer    trace.Tracer
}

// Caller fans one prompt out to every reviewer concurrently and collects
// one outcome per reviewer, in input order.
type Caller struct {
	reviewers []provider.Reviewer
	timeout   time.Duration
	mode      DeadlineMode
	vocab     Vocabulary
	logger    *zap.Logger
	publisher Publisher
	metrics   *metrics.Collector
	tracer    trace.Tracer
}

// NewCaller creates a Caller for the given reviewers.
// Returns ErrNoReviewers when reviewers is empty.
func NewCaller(reviewers []provider.Reviewer, opts CallerOptions) (*Caller, error) {
	if len(reviewers) == 0 {
		return nil, ErrNoReviewers
	}

	callTimeout := opts.CallTimeout
	if callTimeout <= 0 {
		callTimeout = provider.DefaultTimeout
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = callTimeout * 3 / 2
	}
	mode := opts.DeadlineMode
	if mode == "" {
		mode = DeadlinePerTask
	}
	vocab := opts.Vocabulary
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var publisher Publisher = nopPublisher{}
	if opts.Publisher != nil {
		publisher = opts.Publisher
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("github.com/RevCBH/crosscritic/internal/review")
	}

	return &Caller{
		reviewers: append([]provider.Reviewer(nil), reviewers...),
		timeout:   timeout,
		mode:      mode,
		vocab:     vocab,
		logger:    logger.With(zap.String("component", "fanout")),
		publisher: publisher,
		metrics:   opts.Metrics,
		tracer:    tracer,
	}, nil
}

// Reviewers returns the reviewers in input order.
func (c *Caller) Reviewers() []provider.Reviewer {
	return append([]provider.Reviewer(nil), c.reviewers...)
}

// Timeout returns the configured batch timeout.
func (c *Caller) Timeout() time.Duration {
	return c.timeout
}

// ReviewOption adjusts a single Review call.
type ReviewOption func(*reviewSettings)

type reviewSettings struct {
	timeout time.Duration
	mode    DeadlineMode
}

// WithTimeout overrides the batch timeout for one call.
func WithTimeout(d time.Duration) ReviewOption {
	return func(s *reviewSettings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithDeadlineMode overrides the deadline mode for one call.
func WithDeadlineMode(m DeadlineMode) ReviewOption {
	return func(s *reviewSettings) {
		if m != "" {
			s.mode = m
		}
	}
}

// slot carries one task's outcome to the collector. claimed is set by
// whichever side finalizes the outcome first: the task when it finishes,
// or the collector when it gives up waiting.
type slot struct {
	claimed atomic.Bool
	done    chan Outcome
}

// Review sends prompt and contextText to every reviewer and waits for the
// results. Individual reviewer failures, timeouts and panics become failed
// outcomes; Review itself only fails when there are no reviewers.
//
// Reviewers still running when the deadline expires are abandoned, not
// cancelled; their late results are discarded.
func (c *Caller) Review(ctx context.Context, prompt, contextText string, opts ...ReviewOption) (*BatchResult, error) {
	if len(c.reviewers) == 0 {
		return nil, ErrNoReviewers
	}

	settings := reviewSettings{timeout: c.timeout, mode: c.mode}
	for _, opt := range opts {
		opt(&settings)
	}

	batchID := ulid.Make().String()
	n := len(c.reviewers)
	logger := c.logger.With(zap.String("batch", batchID))

	ctx, span := c.tracer.Start(ctx, "review.batch", trace.WithAttributes(
		attribute.String("batch.id", batchID),
		attribute.Int("batch.reviewers", n),
		attribute.String("batch.deadline_mode", string(settings.mode)),
		attribute.Float64("batch.timeout_seconds", settings.timeout.Seconds()),
	))
	defer span.End()

	logger.Info("starting review batch",
		zap.Int("reviewers", n),
		zap.Duration("timeout", settings.timeout),
		zap.String("deadline_mode", string(settings.mode)),
	)
	c.publisher.Emit(events.NewEvent(events.BatchStarted, batchID).WithPayload(map[string]any{
		"reviewers": n,
		"timeout":   settings.timeout.String(),
	}))

	slots := make([]*slot, n)
	for i := range slots {
		slots[i] = &slot{done: make(chan Outcome, 1)}
	}

	// One goroutine per reviewer; no queuing.
	g := new(errgroup.Group)
	g.SetLimit(n)
	for i, r := range c.reviewers {
		g.Go(func() error {
			c.runTask(ctx, batchID, i, r, prompt, contextText, slots[i], logger)
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		logger.Debug("all reviewer tasks finished")
	}()

	outcomes := c.collect(ctx, batchID, slots, settings, logger)

	result := Aggregate(batchID, outcomes, c.vocab)

	span.SetAttributes(
		attribute.Int("batch.succeeded", result.SuccessCount()),
		attribute.Float64("batch.consensus", result.ConsensusScore),
	)
	if !result.AnySucceeded() {
		span.SetStatus(codes.Error, "all reviewers failed")
	}

	logger.Info("review batch completed",
		zap.Int("succeeded", result.SuccessCount()),
		zap.Int("total", result.TotalCount()),
		zap.Float64("consensus", result.ConsensusScore),
	)
	c.metrics.ObserveBatch(result.SuccessCount(), result.TotalCount(), result.ConsensusScore)
	c.publisher.Emit(events.NewEvent(events.BatchCompleted, batchID).WithPayload(map[string]any{
		"succeeded": result.SuccessCount(),
		"total":     result.TotalCount(),
		"consensus": result.ConsensusScore,
	}))

	return result, nil
}

// runTask calls one reviewer and hands its outcome to the collector unless
// the collector already gave up on it.
func (c *Caller) runTask(ctx context.Context, batchID string, index int, r provider.Reviewer, prompt, contextText string, s *slot, logger *zap.Logger) {
	name := r.Name()
	ctx, span := c.tracer.Start(ctx, "review.call", trace.WithAttributes(
		attribute.String("reviewer", name),
		attribute.Int("reviewer.index", index),
	))
	defer span.End()

	c.publisher.Emit(events.NewEvent(events.CallStarted, batchID).WithReviewer(name))

	start := time.Now()
	outcome := c.invoke(ctx, index, r, prompt, contextText)
	outcome.Duration = time.Since(start)

	if !s.claimed.CompareAndSwap(false, true) {
		logger.Debug("discarding late reviewer result",
			zap.String("reviewer", name),
			zap.Duration("elapsed", outcome.Duration),
			zap.Bool("succeeded", outcome.Succeeded()),
		)
		span.SetStatus(codes.Error, "abandoned")
		return
	}

	if outcome.Succeeded() {
		c.metrics.ObserveCall(name, metrics.OutcomeSuccess, outcome.Duration)
		c.publisher.Emit(events.NewEvent(events.CallSucceeded, batchID).WithReviewer(name).WithPayload(map[string]any{
			"duration": outcome.Duration.String(),
		}))
	} else {
		span.SetStatus(codes.Error, outcome.Err)
		logger.Warn("reviewer failed", zap.String("reviewer", name), zap.String("error", outcome.Err))
		c.metrics.ObserveCall(name, metrics.OutcomeFailure, outcome.Duration)
		c.publisher.Emit(events.NewEvent(events.CallFailed, batchID).WithReviewer(name).WithError(outcome.Err))
	}

	s.done <- outcome
}

// invoke performs the reviewer call, converting errors and panics into a
// failed outcome.
func (c *Caller) invoke(ctx context.Context, index int, r provider.Reviewer, prompt, contextText string) (outcome Outcome) {
	name := r.Name()
	outcome = Outcome{Index: index, Reviewer: name}

	defer func() {
		if v := recover(); v != nil {
			outcome.Response = nil
			outcome.Err = fmt.Sprintf("%s: panic: %v", name, v)
		}
	}()

	resp, err := r.Call(ctx, prompt, contextText)
	switch {
	case err != nil:
		outcome.Err = fmt.Sprintf("%s: %s", name, err.Error())
	case resp == nil:
		outcome.Err = fmt.Sprintf("%s: %s", name, provider.ErrEmptyOutput.Error())
	default:
		if resp.Reviewer == "" {
			resp.Reviewer = name
		}
		outcome.Response = resp
	}
	return outcome
}

// collect waits for outcomes in input order. When a wait expires (or ctx
// ends) every reviewer that has not finished yet is marked failed and no
// further waiting happens; reviewers that already finished keep their
// results.
func (c *Caller) collect(ctx context.Context, batchID string, slots []*slot, settings reviewSettings, logger *zap.Logger) []Outcome {
	outcomes := make([]Outcome, len(slots))

	var shared <-chan time.Time
	if settings.mode == DeadlineShared {
		t := time.NewTimer(settings.timeout)
		defer t.Stop()
		shared = t.C
	}

	for i, s := range slots {
		expired := shared
		var t *time.Timer
		if expired == nil {
			t = time.NewTimer(settings.timeout)
			expired = t.C
		}

		select {
		case outcome := <-s.done:
			outcomes[i] = outcome
			if t != nil {
				t.Stop()
			}
			continue

		case <-expired:
			msg := "Timed out after " + provider.FormatSeconds(settings.timeout) + "s"
			logger.Warn("review batch timed out",
				zap.String("waiting_on", c.reviewers[i].Name()),
				zap.Duration("timeout", settings.timeout),
			)
			c.abandon(batchID, slots, outcomes, i, msg, true)

		case <-ctx.Done():
			if t != nil {
				t.Stop()
			}
			logger.Warn("review batch cancelled", zap.Error(ctx.Err()))
			c.abandon(batchID, slots, outcomes, i, ctx.Err().Error(), false)
		}
		break
	}

	return outcomes
}

// abandon finalizes outcomes from index start onward: reviewers that
// already finished keep their result, the rest fail with msg.
func (c *Caller) abandon(batchID string, slots []*slot, outcomes []Outcome, start int, msg string, timedOut bool) {
	for j := start; j < len(slots); j++ {
		s := slots[j]
		if !s.claimed.CompareAndSwap(false, true) {
			// The task claimed first; its send is already buffered or imminent.
			outcomes[j] = <-s.done
			continue
		}

		name := c.reviewers[j].Name()
		outcomes[j] = Outcome{
			Index:    j,
			Reviewer: name,
			Err:      fmt.Sprintf("%s: %s", name, msg),
			TimedOut: timedOut,
		}

		if timedOut {
			c.metrics.ObserveCall(name, metrics.OutcomeTimeout, 0)
			c.publisher.Emit(events.NewEvent(events.CallTimedOut, batchID).WithReviewer(name).WithError(outcomes[j].Err))
		} else {
			c.metrics.ObserveCall(name, metrics.OutcomeFailure, 0)
			c.publisher.Emit(events.NewEvent(events.CallFailed, batchID).WithReviewer(name).WithError(outcomes[j].Err))
		}
	}
}

// Aggregate builds a BatchResult from finished outcomes. Conflicts are
// only computed for two-reviewer batches.
func Aggregate(batchID string, outcomes []Outcome, vocab Vocabulary) *BatchResult {
	score := ConsensusScore(successfulTexts(outcomes), vocab)

	var conflicts []Conflict
	if len(outcomes) == 2 {
		conflicts = DetectConflicts(namedText(outcomes[0]), namedText(outcomes[1]), vocab)
	}

	return &BatchResult{
		ID:             batchID,
		Outcomes:       outcomes,
		Synthesized:    Synthesize(outcomes, score, conflicts, vocab),
		ConsensusScore: score,
		Conflicts:      conflicts,
	}
}

func namedText(o Outcome) *NamedText {
	if !o.Succeeded() {
		return nil
	}
	return &NamedText{Name: o.Reviewer, Text: o.Response.Content}
}
