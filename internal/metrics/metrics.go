// Package metrics records batch-level Prometheus metrics for report runs.
// The CLI is short-lived, so metrics are written to a node_exporter textfile
// instead of being scraped.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"arpulse/internal/analytics"
)

const namespace = "arpulse"

type Recorder struct {
	registry *prometheus.Registry

	records       *prometheus.CounterVec
	visitors      prometheus.Gauge
	tierVisitors  *prometheus.GaugeVec
	scores        prometheus.Histogram
	thresholds    *prometheus.GaugeVec
	lastRun       prometheus.Gauge
	runDuration   prometheus.Gauge
	windowDropped prometheus.Counter
}

// NewRecorder creates a recorder with its own registry, so repeated runs in
// one process never collide with the global default registry.
func NewRecorder() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.records = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_total",
		Help:      "Interaction records processed, by status",
	}, []string{"status"})
	r.visitors = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "visitors",
		Help:      "Distinct visitors in the last report",
	})
	r.tierVisitors = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "tier_visitors",
		Help:      "Visitors per intent tier in the last report",
	}, []string{"tier"})
	r.scores = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "intent_score",
		Help:      "Distribution of visitor intent scores",
		Buckets:   prometheus.LinearBuckets(0, 10, 13),
	})
	r.thresholds = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "tier_threshold",
		Help:      "Score thresholds of the last classification",
	}, []string{"bound", "mode"})
	r.lastRun = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix timestamp of the last completed report",
	})
	r.runDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_duration_seconds",
		Help:      "Wall time of the last report",
	})
	r.windowDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_outside_window_total",
		Help:      "Records dropped by the report window before analysis",
	})

	r.registry.MustRegister(
		r.records, r.visitors, r.tierVisitors, r.scores,
		r.thresholds, r.lastRun, r.runDuration, r.windowDropped,
	)
	return r
}

// Registry exposes the recorder's registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveWindow counts records removed by the report window.
func (r *Recorder) ObserveWindow(dropped int) {
	r.windowDropped.Add(float64(dropped))
}

// Observe records one finished analysis run.
func (r *Recorder) Observe(res *analytics.Result, finishedAt time.Time, took time.Duration) {
	summary := analytics.Summarize(res)

	r.records.WithLabelValues("included").Add(float64(summary.Records))
	r.records.WithLabelValues("excluded").Add(float64(summary.Excluded))
	r.visitors.Set(float64(summary.Visitors))
	for tier, n := range summary.Tiers {
		r.tierVisitors.WithLabelValues(string(tier)).Set(float64(n))
	}

	r.thresholds.Reset()
	if res != nil {
		for _, v := range res.Visitors {
			r.scores.Observe(float64(v.IntentScore))
		}
		if summary.Mode != analytics.ModeNone {
			mode := string(summary.Mode)
			r.thresholds.WithLabelValues("high", mode).Set(res.Classification.HighThreshold)
			r.thresholds.WithLabelValues("low", mode).Set(res.Classification.LowThreshold)
		}
	}

	r.lastRun.Set(float64(finishedAt.Unix()))
	r.runDuration.Set(took.Seconds())
}

// WriteTextfile writes every metric in the Prometheus text format. The file
// is written atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
