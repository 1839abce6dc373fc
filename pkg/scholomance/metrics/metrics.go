// Package metrics exposes Prometheus instrumentation for the engine.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes.
const (
	RequestQueued   = "queued"
	RequestDeduped  = "deduped"
	RequestCached   = "cached"
	RequestDisabled = "disabled"
)

// Completion outcomes.
const (
	CompletionValid   = "valid"
	CompletionInvalid = "invalid"
	CompletionError   = "error"
	CompletionFenced  = "fenced"
)

// Cache names and lookup results.
const (
	CacheFast     = "fast"
	CacheEnriched = "enriched"
	Hit           = "hit"
	Miss          = "miss"
)

// Metrics holds the engine's collectors.
type Metrics struct {
	requests    *prometheus.CounterVec
	completions *prometheus.CounterVec
	inflight    prometheus.Gauge
	lookups     *prometheus.CounterVec
	latency     prometheus.Histogram
}

// New registers the engine collectors with reg. A nil reg creates
// unregistered collectors, which is handy in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scholomance",
			Subsystem: "enrichment",
			Name:      "requests_total",
			Help:      "Enrichment requests by outcome (queued, deduped, cached, disabled)",
		}, []string{"outcome"}),
		completions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scholomance",
			Subsystem: "enrichment",
			Name:      "completions_total",
			Help:      "Finished enrichment jobs by outcome (valid, invalid, error, fenced)",
		}, []string{"outcome"}),
		inflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "scholomance",
			Subsystem: "enrichment",
			Name:      "inflight",
			Help:      "Enrichment jobs currently running",
		}),
		lookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scholomance",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Result cache lookups by cache and result",
		}, []string{"cache", "result"}),
		latency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scholomance",
			Subsystem: "enrichment",
			Name:      "provider_latency_seconds",
			Help:      "Latency of enrichment provider calls",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 15},
		}),
	}
}

// Request counts an enrichment request outcome.
func (m *Metrics) Request(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

// Completion counts a finished enrichment job.
func (m *Metrics) Completion(outcome string) {
	if m == nil {
		return
	}
	m.completions.WithLabelValues(outcome).Inc()
}

// JobStarted and JobFinished track in-flight jobs.
func (m *Metrics) JobStarted() {
	if m == nil {
		return
	}
	m.inflight.Inc()
}

func (m *Metrics) JobFinished(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.inflight.Dec()
	m.latency.Observe(elapsed.Seconds())
}

// CacheLookup counts a hit or miss on the named cache.
func (m *Metrics) CacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	res := Miss
	if hit {
		res = Hit
	}
	m.lookups.WithLabelValues(cache, res).Inc()
}
