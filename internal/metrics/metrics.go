package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssessmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readiness_assessments_total",
			Help: "Total number of assessment requests by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	ResumeGateTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readiness_resume_gate_total",
			Help: "Total number of résumé plausibility checks by verdict",
		},
		[]string{"verdict"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "readiness_stage_duration_seconds",
			Help: "Duration of pipeline stages in seconds",
		},
		[]string{"stage"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "readiness_generation_duration_seconds",
			Help:    "Duration of model generation calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
		[]string{"model", "status"},
	)
)

// ObserveAssessment counts a finished assessment. An empty mode means the
// request failed before its mode was known.
func ObserveAssessment(mode, outcome string) {
	if mode == "" {
		mode = "unknown"
	}
	AssessmentsTotal.WithLabelValues(mode, outcome).Inc()
}

// ObserveResumeGate counts a plausibility verdict.
func ObserveResumeGate(accepted bool) {
	verdict := "rejected"
	if accepted {
		verdict = "accepted"
	}
	ResumeGateTotal.WithLabelValues(verdict).Inc()
}

// ObserveStage records how long a pipeline stage ran.
func ObserveStage(stage string, elapsed time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// ObserveGeneration records a generation call.
func ObserveGeneration(model string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	GenerationDuration.WithLabelValues(model, status).Observe(elapsed.Seconds())
}
