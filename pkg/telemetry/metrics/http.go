package metrics

import (
	"strconv"
	"time"

	"mercator-hq/strcalc/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics tracks requests served by the HTTP API. Routes are the
// registered mux patterns, so label cardinality is bounded.
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rateLimited     *prometheus.CounterVec
	authFailures    *prometheus.CounterVec
}

// NewHTTPMetrics creates and registers HTTP metrics with the provided registry.
func NewHTTPMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *HTTPMetrics {
	hm := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests served",
			},
			[]string{"route", "code"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),

		rateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "http",
				Name:      "rate_limited_total",
				Help:      "Total number of requests rejected by a rate limit",
			},
			[]string{"reason"},
		),

		authFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "http",
				Name:      "auth_failures_total",
				Help:      "Total number of requests rejected for a missing or invalid API key",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(hm.requestsTotal, hm.requestDuration, hm.rateLimited, hm.authFailures)

	return hm
}

// Record records one request.
func (hm *HTTPMetrics) Record(route string, code int, duration time.Duration) {
	hm.requestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	hm.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordRateLimited records one request rejected by the named limit.
func (hm *HTTPMetrics) RecordRateLimited(reason string) {
	hm.rateLimited.WithLabelValues(reason).Inc()
}

// RecordAuthFailure records one rejected API key. Reason is "missing",
// "invalid" or "disabled".
func (hm *HTTPMetrics) RecordAuthFailure(reason string) {
	hm.authFailures.WithLabelValues(reason).Inc()
}
