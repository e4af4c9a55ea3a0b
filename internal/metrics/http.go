package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track request throughput, latency, bytes served, and rate
// limiting, mirroring the counters internal/server's ServerStats keeps for
// the JSON /monitor snapshot (SPEC_FULL.md §4.7) so the Prometheus and JSON
// views of server health never diverge.

var (
	// HTTPRequestDuration tracks request processing time.
	// Labels: method, path, status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "irondrop_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestsTotal counts requests by endpoint and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irondrop_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// BytesServedTotal counts response body bytes written across all
	// requests, the Prometheus mirror of ServerStats.bytes_served.
	BytesServedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "irondrop_bytes_served_total",
			Help: "Total response bytes served",
		},
	)

	// RateLimitedRequests counts connections rejected by the per-IP limiter.
	// Labels: client_ip.
	RateLimitedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irondrop_rate_limited_requests_total",
			Help: "Total number of rate limited requests",
		},
		[]string{"client_ip"},
	)
)

// RecordRateLimit records a rate-limited connection for a client IP.
func RecordRateLimit(clientIP string) {
	RateLimitedRequests.WithLabelValues(clientIP).Inc()
}

// RecordRequest records one completed request's duration, path, status, and
// response size, called from the connection handler after Response.Write.
func RecordRequest(method, path string, status int, durationSeconds float64, bytes int64) {
	statusLabel := statusLabelFor(status)
	HTTPRequestDuration.WithLabelValues(method, path, statusLabel).Observe(durationSeconds)
	HTTPRequestsTotal.WithLabelValues(method, path, statusLabel).Inc()
	BytesServedTotal.Add(float64(bytes))
}

func statusLabelFor(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
