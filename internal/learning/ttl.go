// internal/learning/ttl.go
package learning

import (
	"time"
)

// patternMultipliers scales TTL by (pattern, strategy) pair. Unlisted
// pairs default to 1.0.
var patternMultipliers = map[PatternType]map[Strategy]float64{
	PatternBurst: {
		StrategyFrequency: 1.5,
		StrategyRecency:   1.2,
	},
	PatternSteady: {
		StrategyRecency:  1.2,
		StrategyTemporal: 1.3,
	},
	PatternSporadic: {
		StrategyCost:      0.8,
		StrategyFrequency: 0.9,
	},
	PatternContextual: {
		StrategySession: 1.4,
	},
	PatternAnalytical: {
		StrategySemantic: 1.6,
		StrategyCost:     1.2,
	},
}

// Calculator computes per-key adaptive TTLs from content-type base
// values scaled by frequency, cost, pattern and recency multipliers.
type Calculator struct {
	cfg      Config
	recorder *Recorder
	now      func() time.Time
}

// NewCalculator creates an adaptive TTL calculator.
func NewCalculator(cfg Config, recorder *Recorder) *Calculator {
	return &Calculator{cfg: cfg, recorder: recorder, now: time.Now}
}

// TTL computes the clamped adaptive TTL for a key under the current
// pattern and strategy.
func (c *Calculator) TTL(key string, ct ContentType, meta map[string]interface{}, pattern PatternType, strategy Strategy) time.Duration {
	bounds := c.cfg.Bounds(ct)

	ttl := float64(bounds.Base) *
		c.frequencyMultiplier(key) *
		costMultiplier(meta) *
		patternMultiplier(pattern, strategy) *
		c.recencyMultiplier(key)

	return clampDuration(time.Duration(ttl), bounds.Min, bounds.Max)
}

// frequencyMultiplier tiers by accesses in the last hour.
func (c *Calculator) frequencyMultiplier(key string) float64 {
	count := c.recorder.CountSince(key, c.now().Add(-time.Hour))
	switch {
	case count > 10:
		return 2.0
	case count > 5:
		return 1.5
	case count > 1:
		return 1.0
	default:
		return 0.8
	}
}

// costMultiplier tiers by the cost or tokens_used metadata fields.
func costMultiplier(meta map[string]interface{}) float64 {
	cost := metaFloat(meta, "cost")
	tokens := metaFloat(meta, "tokens_used")

	switch {
	case cost > 0.01 || tokens > 1000:
		return 2.0
	case cost > 0.005 || tokens > 500:
		return 1.5
	case cost > 0.001 || tokens > 100:
		return 1.2
	case cost > 0 || tokens > 0:
		return 1.0
	default:
		return 0.8
	}
}

func patternMultiplier(pattern PatternType, strategy Strategy) float64 {
	if m, ok := patternMultipliers[pattern]; ok {
		if v, ok := m[strategy]; ok {
			return v
		}
	}
	return 1.0
}

// recencyMultiplier tiers by time since the key's last access. A key
// with no prior access is neutral.
func (c *Calculator) recencyMultiplier(key string) float64 {
	last, ok := c.recorder.LastAccess(key)
	if !ok {
		return 1.0
	}
	since := c.now().Sub(last)
	switch {
	case since < 10*time.Minute:
		return 1.5
	case since < time.Hour:
		return 1.2
	case since < 6*time.Hour:
		return 1.0
	default:
		return 0.8
	}
}

func metaFloat(meta map[string]interface{}, key string) float64 {
	if meta == nil {
		return 0
	}
	switch v := meta[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func clampDuration(d, min, max time.Duration) time.Duration {
	if d < min {
		return min
	}
	if d > max {
		return max
	}
	return d
}
