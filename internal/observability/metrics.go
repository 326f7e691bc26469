// Package observability holds the Prometheus collectors shared by the
// gateway and the provider layer.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "codeassist"

// Metrics groups every collector exported on /metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// RequestsTotal counts completed operations.
	// Labels: operation (analyze, fix_bug, generate_docs), source (provider, heuristic, fallback)
	RequestsTotal *prometheus.CounterVec

	// ProviderCalls counts calls made to the LLM provider.
	// Labels: provider, outcome (ok, error, timeout)
	ProviderCalls *prometheus.CounterVec

	// ProviderDuration measures provider round trips.
	// Labels: provider
	ProviderDuration *prometheus.HistogramVec

	// ValidationFailures counts requests rejected before any provider work.
	// Labels: operation
	ValidationFailures *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on reg. Pass a fresh
// prometheus.NewRegistry() in tests to avoid duplicate registration panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Completed code operations by result source.",
		}, []string{"operation", "source"}),
		ProviderCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "LLM provider calls by outcome.",
		}, []string{"provider", "outcome"}),
		ProviderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_duration_seconds",
			Help:      "LLM provider call latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"provider"}),
		ValidationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Requests rejected for missing fields.",
		}, []string{"operation"}),
	}
}

func (m *Metrics) ObserveRequest(operation, source string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(operation, source).Inc()
}

func (m *Metrics) ObserveProviderCall(provider, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.ProviderCalls.WithLabelValues(provider, outcome).Inc()
	m.ProviderDuration.WithLabelValues(provider).Observe(seconds)
}

func (m *Metrics) ObserveValidationFailure(operation string) {
	if m == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(operation).Inc()
}
