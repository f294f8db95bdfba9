// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is shared by the HTTP layer and the generation service.
type Collector struct {
	httpRequests    *prometheus.CounterVec
	httpLatency     prometheus.Histogram
	providerCalls   *prometheus.CounterVec
	quotaRejections prometheus.Counter
}

// NewCollector registers the service metrics on the given registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resumeforge_http_requests_total",
			Help: "HTTP requests by method and status code",
		}, []string{"method", "status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "resumeforge_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resumeforge_provider_calls_total",
			Help: "Generation provider calls by operation and the provider that served them",
		}, []string{"operation", "provider"}),
		quotaRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resumeforge_quota_rejections_total",
			Help: "Requests rejected by the monthly usage ledger",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.providerCalls,
		c.quotaRejections,
	)

	return c
}

func (c *Collector) RecordHTTPRequest(method string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.Observe(duration.Seconds())
}

func (c *Collector) RecordProviderCall(operation, providerName string) {
	c.providerCalls.WithLabelValues(operation, providerName).Inc()
}

func (c *Collector) RecordQuotaRejection() {
	c.quotaRejections.Inc()
}
