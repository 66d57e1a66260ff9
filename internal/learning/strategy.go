// internal/learning/strategy.go
package learning

import "sync"

// DefaultStrategyTable returns the static per-strategy tuning. Loaded
// at startup, never mutated at runtime.
func DefaultStrategyTable() map[Strategy]StrategyParams {
	return map[Strategy]StrategyParams{
		StrategyFrequency: {TTLMultiplier: 1.2, PriorityWeight: 0.8},
		StrategyRecency:   {TTLMultiplier: 1.0, PriorityWeight: 0.6},
		StrategyCost:      {TTLMultiplier: 1.5, PriorityWeight: 0.9},
		StrategySemantic:  {TTLMultiplier: 1.3, PriorityWeight: 0.7},
		StrategySession:   {TTLMultiplier: 1.1, PriorityWeight: 0.75},
		StrategyTemporal:  {TTLMultiplier: 1.0, PriorityWeight: 0.65},
	}
}

// DefaultProfiles returns the static pattern-to-policy table.
func DefaultProfiles() map[PatternType]PatternProfile {
	return map[PatternType]PatternProfile{
		PatternBurst: {
			Characteristics: "high-variance access spikes on few hot keys",
			CacheStrategy:   StrategyFrequency,
			TTLAdjustment:   1.5,
			PreloadStrategy: WarmFrequency,
		},
		PatternSteady: {
			Characteristics: "low-variance sustained traffic across many keys",
			CacheStrategy:   StrategyRecency,
			TTLAdjustment:   1.2,
			PreloadStrategy: WarmFrequency,
		},
		PatternSporadic: {
			Characteristics: "irregular long-tail access, mostly cold keys",
			CacheStrategy:   StrategyCost,
			TTLAdjustment:   0.8,
			PreloadStrategy: WarmFrequency,
		},
		PatternContextual: {
			Characteristics: "session-correlated access runs",
			CacheStrategy:   StrategySession,
			TTLAdjustment:   1.3,
			PreloadStrategy: WarmContextual,
		},
		PatternAnalytical: {
			Characteristics: "aggregate and reporting workloads",
			CacheStrategy:   StrategySemantic,
			TTLAdjustment:   2.0,
			PreloadStrategy: WarmPredictive,
		},
		PatternInsufficient: {
			Characteristics: "not enough history to classify",
			CacheStrategy:   StrategyFrequency,
			TTLAdjustment:   1.0,
			PreloadStrategy: WarmFrequency,
		},
	}
}

var defaultProfiles = DefaultProfiles()

// Selector maps the classified pattern to the active caching strategy.
// Below the confidence gate the previous strategy is retained, with
// frequency_based as the permanent fallback.
type Selector struct {
	mu         sync.RWMutex
	cfg        Config
	profiles   map[PatternType]PatternProfile
	strategies map[Strategy]StrategyParams
	active     Strategy
}

// NewSelector creates a strategy selector with the static tables.
func NewSelector(cfg Config) *Selector {
	return &Selector{
		cfg:        cfg,
		profiles:   DefaultProfiles(),
		strategies: DefaultStrategyTable(),
		active:     StrategyFrequency,
	}
}

// Select updates and returns the active strategy for a snapshot.
func (s *Selector) Select(snap *PatternSnapshot) Strategy {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap != nil && snap.Confidence >= s.cfg.MinPatternConfidence {
		if profile, ok := s.profiles[snap.Pattern]; ok {
			s.active = profile.CacheStrategy
		}
	}
	return s.active
}

// Active returns the current strategy without changing it.
func (s *Selector) Active() Strategy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Profile returns the static profile for a pattern.
func (s *Selector) Profile(p PatternType) PatternProfile {
	return s.profiles[p]
}

// Params returns the static tuning for a strategy.
func (s *Selector) Params(st Strategy) StrategyParams {
	return s.strategies[st]
}
