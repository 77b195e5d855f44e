// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prediction kinds used as label values.
const (
	KindMatch      = "match"
	KindTournament = "tournament"
)

// Prometheus metrics for the prediction service.
var (
	// Counters.
	PredictionsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_submitted_total",
			Help: "Total number of accepted predictions",
		},
		[]string{"kind"},
	)

	PredictionsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_rejected_total",
			Help: "Total number of rejected predictions",
		},
		[]string{"kind", "reason"},
	)

	ResultsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "results_published_total",
			Help: "Total number of published match results and tournament winners",
		},
		[]string{"kind"},
	)

	PointsAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_awarded_total",
			Help: "Total points written by publish operations",
		},
		[]string{"kind"},
	)

	LifecycleTransitionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lifecycle_transitions_total",
			Help: "Total number of matches moved from SCHEDULED to LIVE",
		},
	)

	RevoteDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revote_decisions_total",
			Help: "Total number of resolved revote requests",
		},
		[]string{"decision"},
	)

	// Scheduler metrics.
	SchedulerJobsRunTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_jobs_run_total",
			Help: "Total number of scheduled job runs",
		},
		[]string{"job", "status"},
	)

	SchedulerLastRunTimestamp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scheduler_last_run_timestamp",
			Help: "Unix timestamp of the last run of each scheduled job",
		},
		[]string{"job"},
	)

	// Gauges.
	LifecycleLastSweepTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lifecycle_last_sweep_timestamp",
			Help: "Unix timestamp of the last lifecycle sweep",
		},
	)

	// Histograms.
	ScoringDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scoring_duration_seconds",
			Help:    "Time taken to score and persist a publish operation",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
		},
		[]string{"kind"},
	)
)

// RecordPredictionSubmitted records an accepted prediction.
func RecordPredictionSubmitted(kind string) {
	PredictionsSubmittedTotal.WithLabelValues(kind).Inc()
}

// RecordPredictionRejected records a rejected prediction.
func RecordPredictionRejected(kind, reason string) {
	PredictionsRejectedTotal.WithLabelValues(kind, reason).Inc()
}

// RecordResultPublished records a publish operation and the points it wrote.
func RecordResultPublished(kind string, points int) {
	ResultsPublishedTotal.WithLabelValues(kind).Inc()
	PointsAwardedTotal.WithLabelValues(kind).Add(float64(points))
}

// RecordLifecycleSweep records a sweep and the matches it promoted.
func RecordLifecycleSweep(promoted int) {
	LifecycleTransitionsTotal.Add(float64(promoted))
	LifecycleLastSweepTimestamp.SetToCurrentTime()
}

// RecordRevoteDecision records a revote resolution.
func RecordRevoteDecision(decision string) {
	RevoteDecisionsTotal.WithLabelValues(decision).Inc()
}

// ObserveScoringDuration observes the duration of a publish operation.
func ObserveScoringDuration(kind string, seconds float64) {
	ScoringDurationSeconds.WithLabelValues(kind).Observe(seconds)
}

// RecordSchedulerJobRun records a scheduled job execution.
func RecordSchedulerJobRun(job, status string) {
	SchedulerJobsRunTotal.WithLabelValues(job, status).Inc()
	SchedulerLastRunTimestamp.WithLabelValues(job).SetToCurrentTime()
}
