package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BackendMetrics records what the gateway observes on its outbound calls.
type BackendMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
	refresh  *prometheus.CounterVec
}

// NewBackendMetrics registers the backend call metrics on the provided registerer.
func NewBackendMetrics(reg prometheus.Registerer) *BackendMetrics {
	if reg == nil {
		return &BackendMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Duration of outbound backend requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_requests_total",
		Help: "Outbound backend requests by service and outcome.",
	}, []string{"service", "outcome"})
	refresh := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "token_refresh_total",
		Help: "Credential refresh attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, requests, refresh)
	return &BackendMetrics{
		duration: duration,
		requests: requests,
		refresh:  refresh,
	}
}

// ObserveRequest records one outbound call.
func (b *BackendMetrics) ObserveRequest(service string, outcome string, elapsed time.Duration) {
	if b == nil {
		return
	}
	if b.duration != nil {
		b.duration.WithLabelValues(normalizeLabel(service)).Observe(elapsed.Seconds())
	}
	if b.requests != nil {
		b.requests.WithLabelValues(normalizeLabel(service), normalizeLabel(outcome)).Inc()
	}
}

// IncRefresh counts a refresh attempt with the given outcome.
func (b *BackendMetrics) IncRefresh(outcome string) {
	if b == nil || b.refresh == nil {
		return
	}
	b.refresh.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
