package service

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for engine runs. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	runs       *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	infeasible *prometheus.CounterVec
	impacted   prometheus.Histogram
}

// MustNewMetrics registers the engine collectors with reg, reusing collectors
// that are already registered. Any other registration error panics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "itinera",
				Subsystem: "engine",
				Name:      "runs_total",
				Help:      "Engine operations by outcome.",
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "itinera",
				Subsystem: "engine",
				Name:      "duration_seconds",
				Help:      "Wall time of engine operations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		infeasible: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "itinera",
				Subsystem: "engine",
				Name:      "infeasible_total",
				Help:      "Categories left unfilled or over budget, by reason.",
			},
			[]string{"category", "reason"},
		),
		impacted: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "itinera",
				Subsystem: "replan",
				Name:      "impacted_segments",
				Help:      "Segments impacted per replan.",
				Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
			},
		),
	}

	m.runs = register(reg, m.runs)
	m.duration = register(reg, m.duration)
	m.infeasible = register(reg, m.infeasible)
	m.impacted = register(reg, m.impacted)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ObserveRun records one operation with outcome ok, partial or error.
func (m *Metrics) ObserveRun(operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(operation, outcome).Inc()
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) IncInfeasible(category, reason string) {
	if m == nil {
		return
	}
	m.infeasible.WithLabelValues(category, reason).Inc()
}

func (m *Metrics) ObserveImpacted(n int) {
	if m == nil {
		return
	}
	m.impacted.Observe(float64(n))
}
