// Package metrics holds process-level Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds HTTP-level metrics; domain packages register their own.
type Metrics struct {
	requestDuration *prometheus.HistogramVec
}

// New creates and registers the HTTP metrics.
func New() *Metrics {
	return &Metrics{
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "drivewise_http_request_duration_seconds",
			Help:    "HTTP request duration by method and path",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// ObserveRequest records one handled request. A nil *Metrics records nothing.
func (m *Metrics) ObserveRequest(method, path string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
