package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the service's Prometheus metrics.
type Collector struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CheckoutSessionsTotal *prometheus.CounterVec
	PoliciesCreatedTotal  prometheus.Counter
	OutboundCallsTotal    *prometheus.CounterVec
	DeadLettersTotal      prometheus.Counter
}

// NewCollector registers and returns the metric set.
func NewCollector() *Collector {
	return &Collector{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, path and status",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		CheckoutSessionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_sessions_total",
			Help: "Checkout sessions created, by provider and outcome",
		}, []string{"provider", "outcome"}),
		PoliciesCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "policies_created_total",
			Help: "Policies persisted after successful payment",
		}),
		OutboundCallsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "outbound_calls_total",
			Help: "Outbound API calls, by target and outcome",
		}, []string{"target", "outcome"}),
		DeadLettersTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dead_letters_total",
			Help: "Tasks that exhausted their retries",
		}),
	}
}

// Default is the process-wide collector.
var Default = NewCollector()
