// Package coreconfmetrics provides Prometheus metrics for the coreconf
// handler and demo transport.
package coreconfmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics names as constants for consistency.
const (
	MetricRequestsTotal   = "coreconf_requests_total"
	MetricRequestDuration = "coreconf_request_duration_seconds"
	MetricDatastoreSize   = "coreconf_datastore_nodes"
)

// Metrics contains Prometheus metrics for the coreconf handler. All
// operations are thread-safe.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	datastoreSize   prometheus.Gauge
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRequestsTotal,
				Help: "Total number of coreconf requests by method and response class",
			},
			[]string{"method", "response_class"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricRequestDuration,
				Help:    "coreconf request handling duration in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"method"},
		),
		datastoreSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: MetricDatastoreSize,
				Help: "Number of top-level nodes currently held in the datastore",
			},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.requestsTotal,
		m.requestDuration,
		m.datastoreSize,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRequest records a single handled request. responseClass is the
// CoAP response code class (2, 4, or 5). It satisfies coreconf.MetricsRecorder.
func (m *Metrics) ObserveRequest(method string, responseClass int, durationSeconds float64) {
	m.requestsTotal.WithLabelValues(method, classLabel(responseClass)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(durationSeconds)
}

// SetDatastoreSize updates the datastore node-count gauge.
func (m *Metrics) SetDatastoreSize(n int) {
	m.datastoreSize.Set(float64(n))
}

func classLabel(class int) string {
	switch class {
	case 2:
		return "2xx"
	case 4:
		return "4xx"
	case 5:
		return "5xx"
	default:
		return "unknown"
	}
}
