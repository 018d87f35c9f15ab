// Package metrics exposes engine counters to prometheus.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics collects what batch runs report: run outcomes, integration volume
// and the phase-transition traffic across the table.
type Metrics struct {
	RunsTotal        *prometheus.CounterVec
	StepsTotal       prometheus.Counter
	TransitionsTotal *prometheus.CounterVec
	RunSeconds       prometheus.Histogram
}

// New builds the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stellarsim_runs_total",
				Help: "Completed star runs by outcome",
			},
			[]string{"outcome"},
		),
		StepsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stellarsim_steps_total",
				Help: "Integration steps taken across all runs",
			},
		),
		TransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stellarsim_phase_transitions_total",
				Help: "Phase transitions by source and destination phase",
			},
			[]string{"from", "to"},
		),
		RunSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stellarsim_run_duration_seconds",
				Help:    "Wall-clock duration of single-star runs",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	reg.MustRegister(m.RunsTotal, m.StepsTotal, m.TransitionsTotal, m.RunSeconds)
	return m
}
