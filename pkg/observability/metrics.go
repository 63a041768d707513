// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the vestibule gateway.
package observability

import "github.com/prometheus/client_golang/prometheus"

// GatewayBuckets defines histogram buckets suited for proxy latencies,
// ranging from 5ms to 30s.
var GatewayBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

var (
	// RequestsTotal counts all inbound HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vestibule_requests_total",
			Help: "Total inbound requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records inbound request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vestibule_request_duration_seconds",
			Help:    "Inbound request duration",
			Buckets: GatewayBuckets,
		},
		[]string{"method"},
	)

	// UpstreamRequestsTotal counts calls to the identity-governance backend.
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vestibule_upstream_requests_total",
			Help: "Backend requests",
		},
		[]string{"method", "status"},
	)

	// UpstreamLatency records backend call latency in seconds.
	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vestibule_upstream_latency_seconds",
			Help:    "Backend latency",
			Buckets: GatewayBuckets,
		},
		[]string{"method"},
	)

	// DelegationOpsTotal counts identity delegation operations by outcome.
	DelegationOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vestibule_delegation_ops_total",
			Help: "Delegation operations",
		},
		[]string{"op", "status"},
	)

	// RateLimitRejectedTotal counts requests rejected by the rate limiter.
	RateLimitRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vestibule_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		UpstreamRequestsTotal,
		UpstreamLatency,
		DelegationOpsTotal,
		RateLimitRejectedTotal,
	)
}
