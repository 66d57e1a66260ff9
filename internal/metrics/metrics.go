// internal/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Cache traffic
	hitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "adaptcache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	missesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "adaptcache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	admissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adaptcache_admissions_total",
			Help: "Admission decisions by outcome",
		},
		[]string{"decision"},
	)

	storeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adaptcache_store_errors_total",
			Help: "Store operation failures by operation",
		},
		[]string{"op"},
	)

	ttlSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adaptcache_ttl_seconds",
			Help:    "Computed adaptive TTLs in seconds",
			Buckets: prometheus.ExponentialBuckets(60, 2, 12),
		},
		[]string{"content_type"},
	)

	// Learning signals
	patternConfidence = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "adaptcache_pattern_confidence",
			Help: "Confidence of the current dominant pattern",
		},
	)

	dominantPattern = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "adaptcache_pattern_dominant",
			Help: "1 for the current dominant pattern, 0 otherwise",
		},
		[]string{"type"},
	)

	analysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "adaptcache_analysis_duration_seconds",
			Help:    "Pattern analysis cycle duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	prefetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adaptcache_warming_prefetches_total",
			Help: "Warming prefetches by strategy",
		},
		[]string{"strategy"},
	)
)

// patternTypes mirrors the enumerated pattern values so the dominant
// gauge always exposes the full set.
var patternTypes = []string{
	"burst", "steady", "sporadic", "contextual", "analytical", "insufficient_data",
}

// Collector records learning-engine metrics.
type Collector struct {
	startTime time.Time
}

// NewCollector creates a metrics collector.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// RecordHit records a cache hit.
func (c *Collector) RecordHit() {
	hitsTotal.Inc()
}

// RecordMiss records a cache miss.
func (c *Collector) RecordMiss() {
	missesTotal.Inc()
}

// RecordAdmission records an admission decision.
func (c *Collector) RecordAdmission(cached bool) {
	decision := "skipped"
	if cached {
		decision = "cached"
	}
	admissionsTotal.WithLabelValues(decision).Inc()
}

// RecordStoreError records a failed store operation.
func (c *Collector) RecordStoreError(op string) {
	storeErrorsTotal.WithLabelValues(op).Inc()
}

// RecordTTL records a computed TTL.
func (c *Collector) RecordTTL(contentType string, ttl time.Duration) {
	ttlSeconds.WithLabelValues(contentType).Observe(ttl.Seconds())
}

// RecordAnalysis records a completed analysis cycle.
func (c *Collector) RecordAnalysis(pattern string, confidence float64, duration time.Duration) {
	patternConfidence.Set(confidence)
	analysisDuration.Observe(duration.Seconds())
	for _, p := range patternTypes {
		v := 0.0
		if p == pattern {
			v = 1.0
		}
		dominantPattern.WithLabelValues(p).Set(v)
	}
}

// RecordPrefetches records warming activity.
func (c *Collector) RecordPrefetches(strategy string, count int) {
	prefetchesTotal.WithLabelValues(strategy).Add(float64(count))
}

// Uptime returns time since the collector was created.
func (c *Collector) Uptime() time.Duration {
	return time.Since(c.startTime)
}
