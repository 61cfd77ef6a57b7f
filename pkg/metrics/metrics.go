// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 130},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// AdmissionDecisions tracks rate limiter outcomes.
	AdmissionDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_decisions_total",
			Help: "Admission controller decisions by outcome",
		},
		[]string{"outcome"},
	)

	// TrackedIdentities tracks how many client identities hold a rate window.
	TrackedIdentities = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "admission_tracked_identities",
			Help: "Client identities currently holding a rate window",
		},
	)

	// ValidationRejections tracks normalizer rejections by reason.
	ValidationRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validation_rejections_total",
			Help: "Conversations rejected by the normalizer",
		},
		[]string{"reason"},
	)

	// ProviderAttempts tracks completion attempts per provider and outcome.
	ProviderAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_attempts_total",
			Help: "Completion attempts per provider",
		},
		[]string{"provider", "outcome"},
	)

	// ProviderDuration tracks completion latency per provider.
	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_duration_seconds",
			Help:    "Completion attempt duration per provider",
			Buckets: []float64{.01, .1, .5, 1, 2, 5, 10, 20, 30, 60, 130},
		},
		[]string{"provider", "outcome"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"provider", "direction"},
	)

	// CascadeExhausted counts requests for which every provider failed.
	CascadeExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cascade_exhausted_total",
			Help: "Requests for which every provider in the chain failed",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordAttempt records a single provider attempt.
func RecordAttempt(provider, outcome string, duration float64) {
	ProviderAttempts.WithLabelValues(provider, outcome).Inc()
	ProviderDuration.WithLabelValues(provider, outcome).Observe(duration)
}

// RecordTokens records token usage reported by a provider.
func RecordTokens(provider string, tokensIn, tokensOut int) {
	LLMTokensTotal.WithLabelValues(provider, "in").Add(float64(tokensIn))
	LLMTokensTotal.WithLabelValues(provider, "out").Add(float64(tokensOut))
}
