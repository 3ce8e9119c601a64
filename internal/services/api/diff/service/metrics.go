package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// compare outcomes, used as the outcome label
const (
	outcomeComputed   = "computed"
	outcomeCached     = "cached"
	outcomeIncomplete = "incomplete"
	outcomeNotFound   = "not_found"
	outcomeError      = "error"
	outcomeCanceled   = "canceled"
)

// Metrics holds the engine collectors, a nil *Metrics records nothing
type Metrics struct {
	compares  *prometheus.CounterVec
	lostRaces prometheus.Counter
	duration  *prometheus.HistogramVec
	inflight  prometheus.Gauge
}

// NewMetrics registers the engine collectors on reg
// a nil reg yields working but unregistered collectors
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		compares: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wta",
			Subsystem: "diff",
			Name:      "compares_total",
			Help:      "Compare requests by outcome",
		}, []string{"outcome"}),
		lostRaces: f.NewCounter(prometheus.CounterOpts{
			Namespace: "wta",
			Subsystem: "diff",
			Name:      "result_writes_discarded_total",
			Help:      "Computed results discarded because the comparison changed meanwhile",
		}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wta",
			Subsystem: "diff",
			Name:      "compute_seconds",
			Help:      "Comparator run time by result status",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"status"}),
		inflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "wta",
			Subsystem: "diff",
			Name:      "computations_in_flight",
			Help:      "Comparator runs currently holding a worker slot",
		}),
	}
}

func (m *Metrics) outcome(o string) {
	if m != nil {
		m.compares.WithLabelValues(o).Inc()
	}
}

func (m *Metrics) lostRace() {
	if m != nil {
		m.lostRaces.Inc()
	}
}

func (m *Metrics) observe(status string, seconds float64) {
	if m != nil {
		m.duration.WithLabelValues(status).Observe(seconds)
	}
}

func (m *Metrics) running(delta float64) {
	if m != nil {
		m.inflight.Add(delta)
	}
}
