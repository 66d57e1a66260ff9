// internal/learning/types.go
package learning

import "time"

// Operation is a recorded cache interaction.
type Operation string

const (
	OpGet  Operation = "get"
	OpPut  Operation = "put"
	OpHit  Operation = "hit"
	OpMiss Operation = "miss"
	OpSkip Operation = "skip"
)

// PatternType classifies the dominant usage behavior seen in recent history.
type PatternType string

const (
	PatternBurst        PatternType = "burst"
	PatternSteady       PatternType = "steady"
	PatternSporadic     PatternType = "sporadic"
	PatternContextual   PatternType = "contextual"
	PatternAnalytical   PatternType = "analytical"
	PatternInsufficient PatternType = "insufficient_data"
)

// patternOrder fixes score enumeration so argmax ties break deterministically.
var patternOrder = []PatternType{
	PatternBurst,
	PatternSteady,
	PatternSporadic,
	PatternContextual,
	PatternAnalytical,
}

// Strategy is an active caching strategy.
type Strategy string

const (
	StrategyFrequency Strategy = "frequency_based"
	StrategyRecency   Strategy = "recency_based"
	StrategyCost      Strategy = "cost_based"
	StrategySemantic  Strategy = "semantic_similarity"
	StrategySession   Strategy = "session_context"
	StrategyTemporal  Strategy = "temporal_pattern"
)

// ContentType categorizes cached values for TTL bounds.
type ContentType string

const (
	ContentLLMResponse    ContentType = "llm_response"
	ContentProviderStatus ContentType = "provider_status"
	ContentQueryResult    ContentType = "query_result"
	ContentTemporary      ContentType = "temporary"
	ContentDefault        ContentType = "default"
)

// WarmStrategy selects how the warmer picks candidate keys.
type WarmStrategy string

const (
	WarmPredictive WarmStrategy = "predictive"
	WarmFrequency  WarmStrategy = "frequency_based"
	WarmTemporal   WarmStrategy = "temporal"
	WarmContextual WarmStrategy = "contextual"
)

// AccessContext carries request-scoped attribution for an access.
type AccessContext struct {
	SessionID string `json:"session_id,omitempty"`
	Provider  string `json:"provider,omitempty"`
	Model     string `json:"model,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

// AccessRecord is one entry in the append-only access ledger. Immutable
// once created.
type AccessRecord struct {
	Key       string
	Op        Operation
	Timestamp time.Time
	Context   AccessContext
	Metadata  map[string]interface{}
}

// VarianceLevel buckets normalized variance of per-bucket access counts.
type VarianceLevel string

const (
	VarianceLow    VarianceLevel = "low"
	VarianceMedium VarianceLevel = "medium"
	VarianceHigh   VarianceLevel = "high"
)

// Trend describes how traffic moved across the learning window.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// TemporalAnalysis summarizes access counts across fixed time buckets.
type TemporalAnalysis struct {
	BucketCount        int           `json:"bucket_count"`
	MeanAccesses       float64       `json:"mean_accesses"`
	Variance           float64       `json:"variance"`
	NormalizedVariance float64       `json:"normalized_variance"`
	VarianceLevel      VarianceLevel `json:"variance_level"`
	Trend              Trend         `json:"trend"`
	PeakBuckets        []int         `json:"peak_buckets,omitempty"`
}

// KeyClass tiers a key by its share of total accesses.
type KeyClass string

const (
	KeyHot  KeyClass = "hot"
	KeyWarm KeyClass = "warm"
	KeyCold KeyClass = "cold"
)

// KeyFrequency is one key's slice of the access distribution.
type KeyFrequency struct {
	Key   string   `json:"key"`
	Count int      `json:"count"`
	Share float64  `json:"share"`
	Class KeyClass `json:"class"`
}

// FrequencyAnalysis summarizes the per-key access distribution.
type FrequencyAnalysis struct {
	TotalAccesses int                 `json:"total_accesses"`
	UniqueKeys    int                 `json:"unique_keys"`
	Keys          []KeyFrequency      `json:"keys"` // sorted by count, descending
	Classes       map[string]KeyClass `json:"-"`
	HotKeys       int                 `json:"hot_keys"`
	WarmKeys      int                 `json:"warm_keys"`
	ColdKeys      int                 `json:"cold_keys"`
	Entropy       float64             `json:"entropy"`
}

// ContextualAnalysis summarizes session and provider attribution.
type ContextualAnalysis struct {
	SessionCount       int                `json:"session_count"`
	MeanSessionSize    float64            `json:"mean_session_size"`
	SessionCorrelation float64            `json:"session_correlation"`
	ProviderShares     map[string]float64 `json:"provider_shares,omitempty"`
}

// PatternSnapshot is the full result of one analysis cycle. It replaces
// the previous snapshot wholesale; callers must treat it as read-only.
type PatternSnapshot struct {
	Pattern    PatternType             `json:"pattern_type"`
	Confidence float64                 `json:"confidence"`
	Temporal   TemporalAnalysis        `json:"temporal_analysis"`
	Frequency  FrequencyAnalysis       `json:"frequency_analysis"`
	Contextual ContextualAnalysis      `json:"contextual_analysis"`
	Scores     map[PatternType]float64 `json:"scores"`
	Records    int                     `json:"records"`
	AnalyzedAt time.Time               `json:"analyzed_at"`
}

// StrategyParams are the static tuning knobs for one strategy.
type StrategyParams struct {
	TTLMultiplier  float64 `json:"ttl_multiplier"`
	PriorityWeight float64 `json:"priority_weight"`
}

// PatternProfile maps a classified pattern to cache policy.
type PatternProfile struct {
	Characteristics string       `json:"characteristics"`
	CacheStrategy   Strategy     `json:"cache_strategy"`
	TTLAdjustment   float64      `json:"ttl_adjustment"`
	PreloadStrategy WarmStrategy `json:"preload_strategy"`
}

// Completion describes one finished upstream (LLM) request.
type Completion struct {
	Result   string  `json:"result"`
	Provider string  `json:"provider"`
	Model    string  `json:"model"`
	Response string  `json:"response"`
	Cost     float64 `json:"cost"`
}

// TTLBounds holds the base value and clamp range for one content type.
type TTLBounds struct {
	Base time.Duration `yaml:"base" json:"base"`
	Min  time.Duration `yaml:"min" json:"min"`
	Max  time.Duration `yaml:"max" json:"max"`
}
