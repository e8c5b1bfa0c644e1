package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/RevCBH/crosscritic/internal/config"
	"github.com/RevCBH/crosscritic/internal/debate"
	"github.com/RevCBH/crosscritic/internal/escalate"
	"github.com/RevCBH/crosscritic/internal/events"
	"github.com/RevCBH/crosscritic/internal/logging"
	"github.com/RevCBH/crosscritic/internal/metrics"
	"github.com/RevCBH/crosscritic/internal/provider"
	"github.com/RevCBH/crosscritic/internal/review"
)

// eventBufferSize bounds queued lifecycle events per command
const eventBufferSize = 256

// metricsNamespace prefixes every exported metric
const metricsNamespace = "crosscritic"

// Runtime holds all wired components for one command invocation
type Runtime struct {
	Config    *config.Config
	Logger    *zap.Logger
	Events    *events.Bus
	Metrics   *metrics.Collector
	Reviewers []provider.Reviewer
	Caller    *review.Caller

	// Escalator is nil when no escalation backend is configured
	Escalator escalate.Escalator
}

// loadConfig loads the layered config for projectRoot and applies the
// command-line overrides
func (a *App) loadConfig(projectRoot string) (*config.Config, error) {
	cfg, err := config.LoadConfig(projectRoot)
	if err != nil {
		return nil, err
	}
	if a.opts.verbose {
		cfg.LogLevel = "debug"
	}
	if a.opts.deadlineMode != "" {
		mode := config.DeadlineMode(a.opts.deadlineMode)
		if mode != config.DeadlinePerTask && mode != config.DeadlineShared {
			return nil, fmt.Errorf("invalid --deadline-mode %q (want per_task or shared)", a.opts.deadlineMode)
		}
		cfg.Review.DeadlineMode = mode
	}
	return cfg, nil
}

// newLogger builds the command logger. When w is set logs go there
// instead of stderr.
func newLogger(cfg *config.Config, w io.Writer) (*zap.Logger, error) {
	if w != nil {
		return logging.NewWithWriter(cfg.LogLevel, cfg.LogFormat, w), nil
	}
	return logging.New(cfg.LogLevel, cfg.LogFormat)
}

// reviewersFromConfig builds the configured reviewer CLIs in order
func reviewersFromConfig(cfg *config.Config, logger *zap.Logger) ([]provider.Reviewer, error) {
	provCfgs, err := cfg.ReviewerProviders()
	if err != nil {
		return nil, err
	}
	return provider.FromConfigs(provCfgs, logger)
}

// wire assembles the runtime from cfg. The caller must Close it.
func (a *App) wire(cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	// Create event bus first (other components depend on it)
	bus := events.NewBus(eventBufferSize)
	bus.Subscribe(events.LogHandler(logger))
	if a.opts.jsonEvents {
		bus.Subscribe(events.JSONEmitterHandler(events.NewJSONEmitter(a.stderr), logger))
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(metricsNamespace, logger)
	}

	reviewers, err := a.newReviewers(cfg, logger)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("build reviewers: %w", err)
	}

	callTimeout, err := cfg.CallTimeoutDuration()
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("review.call_timeout: %w", err)
	}
	batchTimeout, err := cfg.BatchTimeoutDuration()
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("review.batch_timeout: %w", err)
	}
	if a.opts.timeout > 0 {
		batchTimeout = a.opts.timeout
	}

	caller, err := review.NewCaller(reviewers, review.CallerOptions{
		CallTimeout:  callTimeout,
		Timeout:      batchTimeout,
		DeadlineMode: review.DeadlineMode(cfg.Review.DeadlineMode),
		Logger:       logger,
		Publisher:    bus,
		Metrics:      collector,
	})
	if err != nil {
		bus.Close()
		return nil, err
	}

	escalator, err := escalate.FromConfig(escalate.Config{
		Backends:     cfg.Escalate.Backends,
		SlackWebhook: cfg.Escalate.SlackWebhook,
		WebhookURL:   cfg.Escalate.WebhookURL,
	}, a.stderr)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("escalate: %w", err)
	}

	return &Runtime{
		Config:    cfg,
		Logger:    logger,
		Events:    bus,
		Metrics:   collector,
		Reviewers: reviewers,
		Caller:    caller,
		Escalator: escalator,
	}, nil
}

// ReviewerNames returns the reviewer names in batch order
func (r *Runtime) ReviewerNames() []string {
	names := make([]string, len(r.Reviewers))
	for i, rv := range r.Reviewers {
		names[i] = rv.Name()
	}
	return names
}

// Debate builds a debate controller over the runtime's caller
func (r *Runtime) Debate() (*debate.Controller, error) {
	return debate.NewController(r.Caller, debate.Options{
		MaxRounds: r.Config.Debate.MaxRounds,
		Logger:    r.Logger,
		Publisher: r.Events,
		Metrics:   r.Metrics,
	})
}

// Escalate notifies the configured backends when result needs a human.
// Delivery failures are logged, never returned.
func (r *Runtime) Escalate(ctx context.Context, subject string, result *review.BatchResult) {
	if r.Escalator == nil {
		return
	}
	e, needed := escalate.FromBatch(subject, result)
	if !needed || !e.Severity.AtLeast(escalate.Severity(r.Config.Escalate.MinSeverity)) {
		return
	}
	if err := r.Escalator.Escalate(ctx, e); err != nil {
		r.Logger.Warn("escalation failed", zap.String("backend", r.Escalator.Name()), zap.Error(err))
		return
	}
	r.Logger.Debug("escalated review", zap.String("severity", string(e.Severity)), zap.String("subject", subject))
}

// Close flushes events and metrics
func (r *Runtime) Close() error {
	var errs []error
	if r.Events != nil {
		if err := r.Events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close event bus: %w", err))
		}
		if dropped := r.Events.Dropped(); dropped > 0 {
			r.Logger.Debug("events dropped", zap.Int64("count", dropped))
		}
	}
	if r.Metrics != nil && r.Config.Metrics.Textfile != "" {
		if err := r.Metrics.WriteTextfile(r.Config.Metrics.Textfile); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	_ = r.Logger.Sync()
	return errors.Join(errs...)
}
