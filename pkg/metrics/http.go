package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPRequestsTotal counts handled requests by route, method, and status class.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "wishboard",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of HTTP requests processed.",
	},
	[]string{"route", "method", "status"},
)

// HTTPRequestDuration observes request latency by route and method.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "wishboard",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency distribution.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route", "method"},
)
