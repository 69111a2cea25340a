package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "bugprint"
	metricsSubsystem = "registry"
)

// Metrics holds the registry collectors
// a nil *Metrics records nothing
type Metrics struct {
	reserves     *prometheus.CounterVec
	confirms     *prometheus.CounterVec
	releases     *prometheus.CounterVec
	swept        prometheus.Counter
	held         prometheus.Gauge
	storeLatency *prometheus.HistogramVec
}

// NewMetrics builds the collectors and registers them on reg when reg is not nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reserves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "reservations_total",
			Help:      "Reservation attempts by result",
		}, []string{"result"}),
		confirms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "confirms_total",
			Help:      "Confirm calls by result",
		}, []string{"result"}),
		releases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "releases_total",
			Help:      "Release calls by result",
		}, []string{"result"}),
		swept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "swept_entries_total",
			Help:      "Expired entries removed by cleanup",
		}),
		held: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "locks_held",
			Help:      "Fingerprints currently held in the in process lock set",
		}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "store_seconds",
			Help:      "Store call latency by operation",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"op"}),
	}
	if reg != nil {
		reg.MustRegister(m.reserves, m.confirms, m.releases, m.swept, m.held, m.storeLatency)
	}
	return m
}

// reservation results
const (
	resultGranted   = "granted"
	resultHeld      = "held"
	resultDuplicate = "duplicate"
	resultError     = "error"
	resultOK        = "ok"
	resultNoop      = "noop"
)

func (m *Metrics) reserve(result string) {
	if m != nil {
		m.reserves.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) confirm(result string) {
	if m != nil {
		m.confirms.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) release(result string) {
	if m != nil {
		m.releases.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) sweep(n int) {
	if m != nil && n > 0 {
		m.swept.Add(float64(n))
	}
}

func (m *Metrics) setHeld(n int) {
	if m != nil {
		m.held.Set(float64(n))
	}
}

// observe returns a func that records the elapsed time for op
func (m *Metrics) observe(op string) func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	return func() { m.storeLatency.WithLabelValues(op).Observe(time.Since(start).Seconds()) }
}
