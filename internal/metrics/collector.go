// Package metrics records reviewer call, batch and debate metrics with
// prometheus. A nil *Collector is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Call outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeTimeout = "timeout"
)

// Collector holds the crosscritic metrics on its own registry so that
// several collectors (one per test) never collide.
type Collector struct {
	registry *prometheus.Registry

	callsTotal     *prometheus.CounterVec
	callDuration   *prometheus.HistogramVec
	batchesTotal   prometheus.Counter
	batchConsensus prometheus.Histogram
	batchSuccesses prometheus.Histogram
	debateRounds   *prometheus.CounterVec
	loopIterations prometheus.Gauge

	logger *zap.Logger
}

// NewCollector creates a collector registering under namespace.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	c := &Collector{
		registry: reg,
		logger:   logger.With(zap.String("component", "metrics")),
	}

	c.callsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviewer_calls_total",
			Help:      "Total number of reviewer calls by outcome",
		},
		[]string{"reviewer", "outcome"},
	)

	c.callDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reviewer_call_duration_seconds",
			Help:      "Reviewer call duration in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 450},
		},
		[]string{"reviewer"},
	)

	c.batchesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_batches_total",
			Help:      "Total number of review batches",
		},
	)

	c.batchConsensus = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "review_batch_consensus_score",
			Help:      "Consensus score per review batch",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	c.batchSuccesses = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "review_batch_success_ratio",
			Help:      "Fraction of reviewers that succeeded per batch",
			Buckets:   prometheus.LinearBuckets(0, 0.25, 5),
		},
	)

	c.debateRounds = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "debate_rounds_total",
			Help:      "Total number of debate rounds by session kind",
		},
		[]string{"kind"},
	)

	c.loopIterations = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loop_iteration",
			Help:      "Current review loop iteration",
		},
	)

	return c
}

// ObserveCall records one reviewer call.
func (c *Collector) ObserveCall(reviewer, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.callsTotal.WithLabelValues(reviewer, outcome).Inc()
	if outcome != OutcomeTimeout {
		c.callDuration.WithLabelValues(reviewer).Observe(d.Seconds())
	}
}

// ObserveBatch records a finished review batch.
func (c *Collector) ObserveBatch(succeeded, total int, consensus float64) {
	if c == nil {
		return
	}
	c.batchesTotal.Inc()
	c.batchConsensus.Observe(consensus)
	if total > 0 {
		c.batchSuccesses.Observe(float64(succeeded) / float64(total))
	}
}

// IncDebateRound records one debate round of the given kind (plan, code).
func (c *Collector) IncDebateRound(kind string) {
	if c == nil {
		return
	}
	c.debateRounds.WithLabelValues(kind).Inc()
}

// SetLoopIteration records the current loop iteration.
func (c *Collector) SetLoopIteration(iteration int) {
	if c == nil {
		return
	}
	c.loopIterations.Set(float64(iteration))
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// WriteTextfile writes all metrics to path in the text exposition format,
// for pickup by a node-exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		c.logger.Warn("failed to write metrics textfile", zap.String("path", path), zap.Error(err))
		return err
	}
	return nil
}
