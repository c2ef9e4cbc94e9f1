// Package metrics holds Prometheus metrics for device lifecycle operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics aggregates the lifecycle counters and histograms. A nil *Metrics is
// valid and records nothing, so services can treat it as optional.
type Metrics struct {
	recoveryAttempts *prometheus.CounterVec
	stepFailures     *prometheus.CounterVec
	recoveryDuration prometheus.Histogram
	swapsCompleted   prometheus.Counter
	optOutsCompleted prometheus.Counter
}

// New creates and registers all device lifecycle metrics.
func New() *Metrics {
	return &Metrics{
		recoveryAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "drivewise_device_recoveries_total",
			Help: "Device recovery saga attempts by outcome",
		}, []string{"outcome"}),
		stepFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "drivewise_recovery_step_failures_total",
			Help: "Recovery saga step failures by remote system",
		}, []string{"step"}),
		recoveryDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "drivewise_recovery_duration_seconds",
			Help:    "Duration of device recovery sagas",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		swapsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "drivewise_device_swaps_total",
			Help: "Completed cross-participant device swaps",
		}),
		optOutsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "drivewise_participant_optouts_total",
			Help: "Completed participant opt-outs",
		}),
	}
}

func (m *Metrics) ObserveRecovery(success bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.recoveryAttempts.WithLabelValues(outcome).Inc()
	m.recoveryDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) RecordStepFailure(step string) {
	if m == nil {
		return
	}
	m.stepFailures.WithLabelValues(step).Inc()
}

func (m *Metrics) IncrementSwaps() {
	if m == nil {
		return
	}
	m.swapsCompleted.Inc()
}

func (m *Metrics) IncrementOptOuts() {
	if m == nil {
		return
	}
	m.optOutsCompleted.Inc()
}
