package autosave

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "proposal"
	metricsSubsystem = "autosave"
)

// Metrics counts synchronizer activity. A nil *Metrics records nothing.
type Metrics struct {
	WritesTotal    *prometheus.CounterVec
	SkippedTotal   prometheus.Counter
	CoalescedTotal prometheus.Counter
	InFlight       prometheus.Gauge
	WriteDuration  prometheus.Histogram
}

// NewMetrics registers the synchronizer metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		WritesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "writes_total",
			Help:      "Store writes by operation and result",
		}, []string{"op", "result"}),
		SkippedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "skipped_total",
			Help:      "Submissions dropped because nothing differed from the remote record",
		}),
		CoalescedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "coalesced_total",
			Help:      "Submissions folded into an already queued write",
		}),
		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "in_flight",
			Help:      "Writes currently in flight",
		}),
		WriteDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "write_duration_seconds",
			Help:      "Store write latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}
}

func (m *Metrics) write(op string, err error, seconds float64) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.WritesTotal.WithLabelValues(op, result).Inc()
	m.WriteDuration.Observe(seconds)
	m.InFlight.Dec()
}

func (m *Metrics) started() {
	if m != nil {
		m.InFlight.Inc()
	}
}

func (m *Metrics) skipped() {
	if m != nil {
		m.SkippedTotal.Inc()
	}
}

func (m *Metrics) coalesced() {
	if m != nil {
		m.CoalescedTotal.Inc()
	}
}
