// Package metrics provides the Prometheus metrics for proxied calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace is the metric namespace used when none is configured.
const DefaultNamespace = "introgate"

// Metrics holds all Prometheus metrics for introgate.
// Pass to components that need to record metrics.
type Metrics struct {
	CallsTotal      *prometheus.CounterVec
	CallDuration    *prometheus.HistogramVec
	DispatchesTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Metrics{
		CallsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calls_total",
				Help:      "Total number of proxied calls",
			},
			[]string{"method", "status"}, // status=ok/error
		),
		CallDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "call_duration_seconds",
				Help:      "Proxied call duration in seconds",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"method"},
		),
		DispatchesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatches_total",
				Help:      "Dispatch decisions made by introduction interceptors",
			},
			[]string{"path", "status"}, // path=introduced/forwarded
		),
	}
}

// RecordCall records a completed call.
func (m *Metrics) RecordCall(method string, err error, latency time.Duration) {
	m.CallsTotal.WithLabelValues(method, status(err)).Inc()
	m.CallDuration.WithLabelValues(method).Observe(latency.Seconds())
}

// RecordDispatch records one dispatch decision.
// The method is not a label here; CallsTotal carries it.
func (m *Metrics) RecordDispatch(path string, method string, err error) {
	m.DispatchesTotal.WithLabelValues(path, status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
