// internal/learning/analyzer.go
package learning

import (
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// analyticalMarkers flag keys belonging to reporting/aggregation
// workloads.
var analyticalMarkers = []string{"stats", "analysis", "report", "aggregate"}

// Analyzer reduces recent access history into temporal, frequency and
// contextual statistics and classifies the dominant usage pattern.
type Analyzer struct {
	cfg    Config
	logger *zap.Logger
}

// NewAnalyzer creates a pattern analyzer.
func NewAnalyzer(cfg Config, logger *zap.Logger) *Analyzer {
	return &Analyzer{cfg: cfg, logger: logger}
}

// Analyze classifies the records within the learning window ending at
// now. Fewer than MinRecords records yields the canonical
// insufficient-data snapshot, never an error.
func (a *Analyzer) Analyze(records []AccessRecord, now time.Time) *PatternSnapshot {
	if len(records) < a.cfg.MinRecords {
		return &PatternSnapshot{
			Pattern:    PatternInsufficient,
			Confidence: 0.0,
			Scores:     zeroScores(),
			Records:    len(records),
			AnalyzedAt: now,
		}
	}

	buckets := a.bucketize(records, now)
	temporal := a.analyzeTemporal(buckets)
	frequency := a.analyzeFrequency(records)
	contextual := a.analyzeContextual(records)
	scores := a.score(records, temporal, frequency, contextual)

	dominant := PatternInsufficient
	best := -1.0
	for _, p := range patternOrder {
		if scores[p] > best {
			best = scores[p]
			dominant = p
		}
	}

	snap := &PatternSnapshot{
		Pattern:    dominant,
		Confidence: best,
		Temporal:   temporal,
		Frequency:  frequency,
		Contextual: contextual,
		Scores:     scores,
		Records:    len(records),
		AnalyzedAt: now,
	}

	a.logger.Debug("pattern analysis complete",
		zap.String("pattern", string(dominant)),
		zap.Float64("confidence", best),
		zap.Int("records", len(records)))

	return snap
}

// bucket aggregates one fixed time slice.
type bucket struct {
	accessCount int
	uniqueKeys  map[string]bool
	opCounts    map[Operation]int
}

// bucketize partitions records into fixed buckets spanning the whole
// learning window, zero-padded. Empty buckets matter: a burst confined
// to one bucket must register as high variance.
func (a *Analyzer) bucketize(records []AccessRecord, now time.Time) []bucket {
	n := int(a.cfg.LearningWindow / a.cfg.BucketSize)
	if n < 1 {
		n = 1
	}
	windowStart := now.Add(-a.cfg.LearningWindow)

	buckets := make([]bucket, n)
	for i := range buckets {
		buckets[i].uniqueKeys = make(map[string]bool)
		buckets[i].opCounts = make(map[Operation]int)
	}

	for _, rec := range records {
		idx := int(rec.Timestamp.Sub(windowStart) / a.cfg.BucketSize)
		if idx < 0 {
			continue // outside the window
		}
		if idx >= n {
			idx = n - 1
		}
		buckets[idx].accessCount++
		buckets[idx].uniqueKeys[rec.Key] = true
		buckets[idx].opCounts[rec.Op]++
	}

	return buckets
}

func (a *Analyzer) analyzeTemporal(buckets []bucket) TemporalAnalysis {
	n := len(buckets)
	total := 0
	for _, b := range buckets {
		total += b.accessCount
	}
	mean := float64(total) / float64(n)

	variance := 0.0
	for _, b := range buckets {
		d := float64(b.accessCount) - mean
		variance += d * d
	}
	variance /= float64(n)

	normalized := 0.0
	if mean > 0 {
		normalized = variance / mean
	}

	level := VarianceHigh
	switch {
	case normalized < 0.5:
		level = VarianceLow
	case normalized < 2.0:
		level = VarianceMedium
	}

	// Trend: compare mean access count of the first half of the window
	// to the second half. A single-bucket window has no halves to
	// compare, so it reads as stable.
	trend := TrendStable
	if half := n / 2; half > 0 {
		firstTotal, secondTotal := 0, 0
		for i, b := range buckets {
			if i < half {
				firstTotal += b.accessCount
			} else {
				secondTotal += b.accessCount
			}
		}
		first := float64(firstTotal) / float64(half)
		second := float64(secondTotal) / float64(n-half)

		switch {
		case first == 0 && second > 0:
			trend = TrendIncreasing
		case first > 0 && (second-first)/first > 0.2:
			trend = TrendIncreasing
		case first > 0 && (second-first)/first < -0.2:
			trend = TrendDecreasing
		}
	}

	var peaks []int
	for i, b := range buckets {
		if float64(b.accessCount) > 1.5*mean && b.accessCount > 0 {
			peaks = append(peaks, i)
		}
	}

	return TemporalAnalysis{
		BucketCount:        n,
		MeanAccesses:       mean,
		Variance:           variance,
		NormalizedVariance: normalized,
		VarianceLevel:      level,
		Trend:              trend,
		PeakBuckets:        peaks,
	}
}

func (a *Analyzer) analyzeFrequency(records []AccessRecord) FrequencyAnalysis {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[rec.Key]++
	}
	total := len(records)

	keys := make([]KeyFrequency, 0, len(counts))
	classes := make(map[string]KeyClass, len(counts))
	hot, warm, cold := 0, 0, 0
	entropy := 0.0

	for k, c := range counts {
		share := float64(c) / float64(total)

		class := KeyCold
		switch {
		case share > a.cfg.HotKeyShare:
			class = KeyHot
			hot++
		case share >= a.cfg.WarmKeyShare:
			class = KeyWarm
			warm++
		default:
			cold++
		}

		classes[k] = class
		keys = append(keys, KeyFrequency{Key: k, Count: c, Share: share, Class: class})
		entropy -= share * math.Log2(share)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Count != keys[j].Count {
			return keys[i].Count > keys[j].Count
		}
		return keys[i].Key < keys[j].Key
	})

	return FrequencyAnalysis{
		TotalAccesses: total,
		UniqueKeys:    len(counts),
		Keys:          keys,
		Classes:       classes,
		HotKeys:       hot,
		WarmKeys:      warm,
		ColdKeys:      cold,
		Entropy:       entropy,
	}
}

func (a *Analyzer) analyzeContextual(records []AccessRecord) ContextualAnalysis {
	sessions := make(map[string]int)
	providers := make(map[string]int)
	for _, rec := range records {
		if rec.Context.SessionID != "" {
			sessions[rec.Context.SessionID]++
		}
		if rec.Context.Provider != "" {
			providers[rec.Context.Provider]++
		}
	}

	meanSize := 0.0
	if len(sessions) > 0 {
		total := 0
		for _, c := range sessions {
			total += c
		}
		meanSize = float64(total) / float64(len(sessions))
	}

	var shares map[string]float64
	if len(providers) > 0 {
		shares = make(map[string]float64, len(providers))
		for p, c := range providers {
			shares[p] = float64(c) / float64(len(records))
		}
	}

	return ContextualAnalysis{
		SessionCount:       len(sessions),
		MeanSessionSize:    meanSize,
		SessionCorrelation: math.Min(1.0, meanSize/10),
		ProviderShares:     shares,
	}
}

// score computes the five pattern scores, each the average of two
// sub-scores in [0,1].
func (a *Analyzer) score(records []AccessRecord, t TemporalAnalysis, f FrequencyAnalysis, c ContextualAnalysis) map[PatternType]float64 {
	burstVar := map[VarianceLevel]float64{VarianceHigh: 0.8, VarianceMedium: 0.5, VarianceLow: 0.2}
	steadyVar := map[VarianceLevel]float64{VarianceLow: 0.8, VarianceMedium: 0.6, VarianceHigh: 0.2}
	sporadicVar := map[VarianceLevel]float64{VarianceHigh: 0.7, VarianceMedium: 0.4, VarianceLow: 0.1}

	// Share of all accesses that land on hot keys: how concentrated
	// the traffic is.
	hotAccesses := 0
	for _, kf := range f.Keys {
		if kf.Class == KeyHot {
			hotAccesses += kf.Count
		}
	}
	hotConcentration := 0.0
	if f.TotalAccesses > 0 {
		hotConcentration = float64(hotAccesses) / float64(f.TotalAccesses)
	}

	coldRatio := 0.0
	if f.UniqueKeys > 0 {
		coldRatio = float64(f.ColdKeys) / float64(f.UniqueKeys)
	}

	analyticalAccesses := 0
	for _, rec := range records {
		key := strings.ToLower(rec.Key)
		for _, marker := range analyticalMarkers {
			if strings.Contains(key, marker) {
				analyticalAccesses++
				break
			}
		}
	}
	analyticalShare := float64(analyticalAccesses) / float64(len(records))

	scores := map[PatternType]float64{
		PatternBurst:      clamp01((burstVar[t.VarianceLevel] + hotConcentration) / 2),
		PatternSteady:     clamp01((steadyVar[t.VarianceLevel] + math.Min(1, float64(f.UniqueKeys)/100)) / 2),
		PatternSporadic:   clamp01((sporadicVar[t.VarianceLevel] + coldRatio) / 2),
		PatternContextual: clamp01(c.SessionCorrelation),
		PatternAnalytical: clamp01(analyticalShare),
	}
	return scores
}

func zeroScores() map[PatternType]float64 {
	scores := make(map[PatternType]float64, len(patternOrder))
	for _, p := range patternOrder {
		scores[p] = 0.0
	}
	return scores
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
