package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/FACorreiaa/transcript-strike/internal/domain/strike"
	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript/parser"
)

// Metrics exposes pipeline counters. A nil *Metrics records nothing.
type Metrics struct {
	rows         *prometheus.CounterVec
	skipped      *prometheus.CounterVec
	degraded     prometheus.Counter
	evaluated    prometheus.Counter
	rejected     prometheus.Counter
	runs         *prometheus.CounterVec
	searchTime   prometheus.Histogram
	lastBest     prometheus.Gauge
	lastBaseline prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "transcript",
			Name:      "rows_total",
			Help:      "Transcript rows seen by the interpreter, by outcome.",
		}, []string{"outcome"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "transcript",
			Name:      "rows_skipped_total",
			Help:      "Skipped transcript rows, by reason.",
		}, []string{"reason"}),
		degraded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "transcript",
			Name:      "cells_degraded_total",
			Help:      "Grade or credit cells that fell back to passed or zero.",
		}),
		evaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "strike",
			Name:      "combinations_evaluated_total",
			Help:      "Strike combinations evaluated.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "strike",
			Name:      "combinations_rejected_total",
			Help:      "Strike combinations discarded by the credit cap.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "strike",
			Name:      "runs_total",
			Help:      "Strike searches, by status.",
		}, []string{"status"}),
		searchTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "strike",
			Name:      "search_duration_seconds",
			Help:      "Duration of the strike search.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		lastBest: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "strike",
			Name:      "best_average",
			Help:      "Best average of the last successful search.",
		}),
		lastBaseline: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "strike",
			Name:      "baseline_average",
			Help:      "Average without strikes of the last successful search.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.rows, m.skipped, m.degraded, m.evaluated, m.rejected,
			m.runs, m.searchTime, m.lastBest, m.lastBaseline)
	}
	return m
}

func (m *Metrics) observeExtraction(r *parser.Result) {
	if m == nil || r == nil {
		return
	}
	m.rows.WithLabelValues("parsed").Add(float64(r.ParsedRows))
	m.rows.WithLabelValues("skipped").Add(float64(r.SkippedRows()))
	for reason, n := range r.Skipped {
		m.skipped.WithLabelValues(string(reason)).Add(float64(n))
	}
	m.degraded.Add(float64(len(r.Degraded)))
}

func (m *Metrics) observeSearch(r *strike.Result, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.runs.WithLabelValues("error").Inc()
		return
	}
	m.runs.WithLabelValues("ok").Inc()
	m.evaluated.Add(float64(r.Evaluated))
	m.rejected.Add(float64(r.Rejected))
	m.searchTime.Observe(r.Duration.Seconds())
	if r.Best.Defined {
		m.lastBest.Set(r.Best.Value)
	}
	if r.Baseline.Defined {
		m.lastBaseline.Set(r.Baseline.Value)
	}
}
