package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verify module.
type Metrics struct {
	// Verification outcomes by status and denial reason
	Outcome *prometheus.CounterVec

	// Pipeline steps where evaluation stopped, by step name
	StepReached *prometheus.CounterVec

	// Session retries scheduled
	Retries prometheus.Counter

	// Profile fetch latencies by source
	ProfileFetchLatency *prometheus.HistogramVec

	// Overall single-pass evaluation latency
	EvaluateLatency prometheus.Histogram
}

// New creates a new Metrics instance with all verify module metrics registered.
func New() *Metrics {
	return &Metrics{
		Outcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hrgate_verify_outcomes_total",
			Help: "Total verification outcomes by status and denial reason",
		}, []string{"status", "reason"}), // reason: empty for verified/pending

		StepReached: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hrgate_verify_step_stopped_total",
			Help: "Pipeline step at which evaluation stopped, by step",
		}, []string{"step"}),

		Retries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hrgate_verify_retries_total",
			Help: "Total verification retries scheduled by sessions",
		}),

		ProfileFetchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hrgate_verify_profile_fetch_duration_seconds",
			Help:    "Duration of profile record fetches by source",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"source"}), // source: "employment", "role_grant", "cache"

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hrgate_verify_evaluate_duration_seconds",
			Help:    "Duration of full verification including profile gathering",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementOutcome records a verification outcome.
func (m *Metrics) IncrementOutcome(status, reason string) {
	if m != nil {
		m.Outcome.WithLabelValues(status, reason).Inc()
	}
}

// IncrementStepStopped records the pipeline step where evaluation stopped.
func (m *Metrics) IncrementStepStopped(step string) {
	if m != nil {
		m.StepReached.WithLabelValues(step).Inc()
	}
}

// IncrementRetries records a scheduled retry.
func (m *Metrics) IncrementRetries() {
	if m != nil {
		m.Retries.Inc()
	}
}

// ObserveProfileFetchLatency records the duration of fetching one profile record.
func (m *Metrics) ObserveProfileFetchLatency(source string, d time.Duration) {
	if m != nil {
		m.ProfileFetchLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}
