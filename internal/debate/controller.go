package debate

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/RevCBH/crosscritic/internal/events"
	"github.com/RevCBH/crosscritic/internal/metrics"
	"github.com/RevCBH/crosscritic/internal/provider"
	"github.com/RevCBH/crosscritic/internal/review"
)

// Batcher runs one fan-out round. *review.Caller satisfies it.
type Batcher interface {
	Review(ctx context.Context, prompt, contextText string, opts ...review.ReviewOption) (*review.BatchResult, error)
	Reviewers() []provider.Reviewer
}

// Options configures a Controller. Zero values select defaults.
type Options struct {
	// MaxRounds caps new sessions. Default: DefaultMaxRounds.
	MaxRounds int

	Logger    *zap.Logger
	Publisher review.Publisher
	Metrics   *metrics.Collector
	Tracer    trace.Tracer
}

// Controller runs multi-round debates between two reviewers. Every round
// is one two-reviewer batch; later rounds see the transcript so far.
type Controller struct {
	batcher   Batcher
	names     []string
	maxRounds int
	logger    *zap.Logger
	publisher review.Publisher
	metrics   *metrics.Collector
	tracer    trace.Tracer
}

// NewController creates a Controller. Returns ErrReviewerCount unless the
// batcher has exactly two reviewers.
func NewController(b Batcher, opts Options) (*Controller, error) {
	reviewers := b.Reviewers()
	if len(reviewers) != 2 {
		return nil, fmt.Errorf("%w: got %d", ErrReviewerCount, len(reviewers))
	}

	maxRounds := opts.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("github.com/RevCBH/crosscritic/internal/debate")
	}

	return &Controller{
		batcher:   b,
		names:     []string{reviewers[0].Name(), reviewers[1].Name()},
		maxRounds: maxRounds,
		logger:    logger.With(zap.String("component", "debate")),
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		tracer:    tracer,
	}, nil
}

// Start runs round 1 for subject and returns the new session along with
// the round's batch result.
func (c *Controller) Start(ctx context.Context, kind Kind, subjectPath, subject, contextText string, opts ...review.ReviewOption) (*Session, *review.BatchResult, error) {
	return c.StartWithPrompt(ctx, kind, subjectPath, InitialPrompt(kind, subject), contextText, opts...)
}

// StartWithPrompt runs round 1 with a prompt built by the caller, e.g. a
// code review prompt that carries the plan alongside the diff.
func (c *Controller) StartWithPrompt(ctx context.Context, kind Kind, subjectPath, prompt, contextText string, opts ...review.ReviewOption) (*Session, *review.BatchResult, error) {
	s := NewSession(kind, subjectPath, c.names, c.maxRounds)
	result, err := c.runRound(ctx, s, prompt, contextText, opts...)
	if err != nil {
		return nil, nil, err
	}
	return s, result, nil
}

// Continue runs the next round of s. The prompt carries the subject, the
// full transcript and an optional focus directive. A full session yields
// a CapacityError and is left unchanged.
func (c *Controller) Continue(ctx context.Context, s *Session, subject, contextText, focus string, opts ...review.ReviewOption) (*review.BatchResult, error) {
	if s == nil {
		return nil, ErrNoSession
	}
	if s.MaxRounds <= 0 {
		s.MaxRounds = c.maxRounds
	}
	if s.Full() {
		return nil, &CapacityError{Max: s.MaxRounds}
	}
	if len(s.Reviewers) == 2 && (s.Reviewers[0] != c.names[0] || s.Reviewers[1] != c.names[1]) {
		c.logger.Warn("reviewers differ from the session's",
			zap.Strings("session", s.Reviewers),
			zap.Strings("configured", c.names),
		)
	}

	prompt := ContinuePrompt(subject, s.Transcript(), s.RoundCount()+1, focus)
	return c.runRound(ctx, s, prompt, contextText, opts...)
}

func (c *Controller) runRound(ctx context.Context, s *Session, prompt, contextText string, opts ...review.ReviewOption) (*review.BatchResult, error) {
	number := s.RoundCount() + 1
	logger := c.logger.With(zap.String("session", s.ID), zap.Int("round", number))

	ctx, span := c.tracer.Start(ctx, "debate.round", trace.WithAttributes(
		attribute.String("debate.session", s.ID),
		attribute.String("debate.kind", string(s.Kind)),
		attribute.Int("debate.round", number),
	))
	defer span.End()

	logger.Info("starting debate round", zap.Int("max_rounds", s.MaxRounds))
	c.emit(events.NewEvent(events.RoundStarted, s.ID).WithRound(number).WithPayload(map[string]any{
		"kind": string(s.Kind),
	}))

	result, err := c.batcher.Review(ctx, prompt, contextText, opts...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("round %d: %w", number, err)
	}

	if err := s.Append(RoundFromBatch(number, result)); err != nil {
		return nil, err
	}

	c.metrics.IncDebateRound(string(s.Kind))
	logger.Info("debate round completed",
		zap.Int("succeeded", result.SuccessCount()),
		zap.Float64("consensus", result.ConsensusScore),
	)
	c.emit(events.NewEvent(events.RoundCompleted, s.ID).WithRound(number).WithPayload(map[string]any{
		"succeeded": result.SuccessCount(),
		"consensus": result.ConsensusScore,
	}))
	return result, nil
}

func (c *Controller) emit(e events.Event) {
	if c.publisher != nil {
		c.publisher.Emit(e)
	}
}

// RoundFromBatch converts a batch's outcomes into a round.
func RoundFromBatch(number int, result *review.BatchResult) Round {
	r := Round{Number: number, Entries: make([]Entry, 0, len(result.Outcomes))}
	for _, o := range result.Outcomes {
		e := Entry{Reviewer: o.Reviewer}
		if o.Succeeded() {
			content := o.Response.Content
			e.Response = &content
		} else {
			msg := o.Err
			e.Error = &msg
		}
		r.Entries = append(r.Entries, e)
	}
	return r
}

// SessionFromBatch starts a session whose round 1 is an already collected
// two-reviewer batch.
func SessionFromBatch(kind Kind, subjectPath string, maxRounds int, result *review.BatchResult) (*Session, error) {
	if result == nil || len(result.Outcomes) != 2 {
		return nil, ErrReviewerCount
	}
	names := []string{result.Outcomes[0].Reviewer, result.Outcomes[1].Reviewer}
	s := NewSession(kind, subjectPath, names, maxRounds)
	if err := s.Append(RoundFromBatch(1, result)); err != nil {
		return nil, err
	}
	return s, nil
}

// IsCapacity reports whether err is a CapacityError.
func IsCapacity(err error) bool {
	return errors.Is(err, ErrMaxRounds)
}
