// internal/learning/strategy_test.go
package learning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelector_DefaultsToFrequency(t *testing.T) {
	s := NewSelector(DefaultConfig())
	assert.Equal(t, StrategyFrequency, s.Active())
}

func TestSelector_ConfidentSnapshotSwitchesStrategy(t *testing.T) {
	s := NewSelector(DefaultConfig())

	active := s.Select(&PatternSnapshot{Pattern: PatternContextual, Confidence: 0.85})
	assert.Equal(t, StrategySession, active)
	assert.Equal(t, StrategySession, s.Active())
}

func TestSelector_LowConfidenceRetainsPrevious(t *testing.T) {
	s := NewSelector(DefaultConfig())

	s.Select(&PatternSnapshot{Pattern: PatternAnalytical, Confidence: 0.9})
	assert.Equal(t, StrategySemantic, s.Active())

	// A shaky reclassification must not churn the strategy.
	active := s.Select(&PatternSnapshot{Pattern: PatternBurst, Confidence: 0.5})
	assert.Equal(t, StrategySemantic, active)

	// Nor does a nil snapshot.
	assert.Equal(t, StrategySemantic, s.Select(nil))
}

func TestSelector_ExactlyAtGateSwitches(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSelector(cfg)

	active := s.Select(&PatternSnapshot{Pattern: PatternSporadic, Confidence: cfg.MinPatternConfidence})
	assert.Equal(t, StrategyCost, active)
}

func TestSelector_ProfileTableCoversEveryPattern(t *testing.T) {
	s := NewSelector(DefaultConfig())

	for _, p := range []PatternType{
		PatternBurst, PatternSteady, PatternSporadic,
		PatternContextual, PatternAnalytical, PatternInsufficient,
	} {
		profile := s.Profile(p)
		assert.NotEmpty(t, profile.CacheStrategy, "pattern %s", p)
		assert.NotEmpty(t, profile.PreloadStrategy, "pattern %s", p)
		assert.Greater(t, profile.TTLAdjustment, 0.0, "pattern %s", p)
	}
}

func TestSelector_ParamsCoverEveryStrategy(t *testing.T) {
	s := NewSelector(DefaultConfig())

	for _, st := range []Strategy{
		StrategyFrequency, StrategyRecency, StrategyCost,
		StrategySemantic, StrategySession, StrategyTemporal,
	} {
		params := s.Params(st)
		assert.Greater(t, params.TTLMultiplier, 0.0, "strategy %s", st)
		assert.Greater(t, params.PriorityWeight, 0.0, "strategy %s", st)
		assert.LessOrEqual(t, params.PriorityWeight, 1.0, "strategy %s", st)
	}
}
