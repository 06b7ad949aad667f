// Package metrics holds the Prometheus collectors for the verification pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
)

var (
	// BackendCalls counts generative backend calls by operation and outcome.
	BackendCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillbridge_backend_calls_total",
		Help: "Generative backend calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	BackendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skillbridge_backend_call_seconds",
		Help:    "Generative backend call latency.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"backend", "mode"})

	AssessmentFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skillbridge_assessment_fallbacks_total",
		Help: "Assessments served from the fixed fallback question set.",
	})

	GradedTests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillbridge_graded_tests_total",
		Help: "Graded assessment submissions by result.",
	}, []string{"result"})

	VerificationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillbridge_verification_transitions_total",
		Help: "Verification status transitions by target status.",
	}, []string{"status"})
)
