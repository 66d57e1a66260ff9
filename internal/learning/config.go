// internal/learning/config.go
package learning

import "time"

// Config holds every tunable of the learning engine. The scoring
// constants are heuristics pending real calibration data, so all of
// them are named and overridable rather than hard-coded.
type Config struct {
	// LearningWindow is the trailing span of history that feeds analysis.
	LearningWindow time.Duration `yaml:"learning_window"`
	// BucketSize partitions the window for temporal statistics.
	BucketSize time.Duration `yaml:"bucket_size"`
	// AnalysisInterval drives the background pattern-analysis job.
	AnalysisInterval time.Duration `yaml:"analysis_interval"`
	// OptimizeInterval drives the background warming/optimization job.
	OptimizeInterval time.Duration `yaml:"optimize_interval"`

	// MinRecords below which analysis reports insufficient data.
	MinRecords int `yaml:"min_records"`
	// MinPatternConfidence gates strategy changes.
	MinPatternConfidence float64 `yaml:"min_pattern_confidence"`

	// AdmissionThreshold is the score a value must beat to be cached.
	AdmissionThreshold float64 `yaml:"admission_threshold"`
	FrequencyWeight    float64 `yaml:"frequency_weight"`
	CostWeight         float64 `yaml:"cost_weight"`
	PatternWeight      float64 `yaml:"pattern_weight"`

	// HotKeyShare / WarmKeyShare tier keys by access share.
	HotKeyShare  float64 `yaml:"hot_key_share"`
	WarmKeyShare float64 `yaml:"warm_key_share"`

	// NonCacheable content types are rejected unconditionally.
	NonCacheable []ContentType `yaml:"non_cacheable"`

	// Shards for the history recorder.
	Shards int `yaml:"shards"`

	// PrefetchPerSecond / PrefetchBurst bound warming calls.
	PrefetchPerSecond float64 `yaml:"prefetch_per_second"`
	PrefetchBurst     int     `yaml:"prefetch_burst"`

	// TTL bounds per content type.
	TTL map[ContentType]TTLBounds `yaml:"ttl"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		LearningWindow:       24 * time.Hour,
		BucketSize:           5 * time.Minute,
		AnalysisInterval:     30 * time.Minute,
		OptimizeInterval:     2 * time.Hour,
		MinRecords:           10,
		MinPatternConfidence: 0.7,
		AdmissionThreshold:   0.6,
		FrequencyWeight:      0.4,
		CostWeight:           0.3,
		PatternWeight:        0.3,
		HotKeyShare:          0.05,
		WarmKeyShare:         0.01,
		NonCacheable:         []ContentType{ContentTemporary},
		Shards:               16,
		PrefetchPerSecond:    10,
		PrefetchBurst:        5,
		TTL:                  DefaultTTLTable(),
	}
}

// DefaultTTLTable returns the content-type base TTLs and clamp bounds.
func DefaultTTLTable() map[ContentType]TTLBounds {
	return map[ContentType]TTLBounds{
		ContentLLMResponse:    {Base: 4 * time.Hour, Min: 5 * time.Minute, Max: 24 * time.Hour},
		ContentProviderStatus: {Base: 30 * time.Minute, Min: 1 * time.Minute, Max: 4 * time.Hour},
		ContentQueryResult:    {Base: 1 * time.Hour, Min: 10 * time.Minute, Max: 12 * time.Hour},
		ContentDefault:        {Base: 1 * time.Hour, Min: 5 * time.Minute, Max: 8 * time.Hour},
	}
}

// Bounds resolves the TTL bounds for a content type, falling back to
// the default entry for unknown types.
func (c Config) Bounds(ct ContentType) TTLBounds {
	if b, ok := c.TTL[ct]; ok {
		return b
	}
	return c.TTL[ContentDefault]
}

// Cacheable reports whether a content type may be admitted at all.
func (c Config) Cacheable(ct ContentType) bool {
	for _, nc := range c.NonCacheable {
		if ct == nc {
			return false
		}
	}
	return true
}
