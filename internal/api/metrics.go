package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors of the API.
type Metrics struct {
	Simulations   *prometheus.CounterVec
	CompileErrors *prometheus.CounterVec
	CacheLookups  *prometheus.CounterVec
	Duration      prometheus.Histogram
	States        prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Simulations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tetr_simulations_total",
				Help: "Simulated programs by outcome",
			},
			[]string{"outcome"},
		),
		CompileErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tetr_compile_errors_total",
				Help: "Rejected programs by error code",
			},
			[]string{"code"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tetr_cache_lookups_total",
				Help: "Response cache lookups by endpoint and result",
			},
			[]string{"endpoint", "result"},
		),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tetr_simulation_duration_seconds",
			Help:    "Time to compile, simulate and render a program",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		States: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tetr_states_per_run",
			Help:    "Number of states produced by a simulation",
			Buckets: prometheus.ExponentialBuckets(2, 2, 10),
		}),
	}
	reg.MustRegister(m.Simulations, m.CompileErrors, m.CacheLookups, m.Duration, m.States)
	return m
}
