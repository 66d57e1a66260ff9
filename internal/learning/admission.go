// internal/learning/admission.go
package learning

import (
	"math"
	"time"
)

// Admission decides whether a value is worth caching at all.
type Admission struct {
	cfg      Config
	recorder *Recorder
	now      func() time.Time
}

// NewAdmission creates an admission controller.
func NewAdmission(cfg Config, recorder *Recorder) *Admission {
	return &Admission{cfg: cfg, recorder: recorder, now: time.Now}
}

// ShouldCache reports whether the value passes the admission score.
// Non-cacheable content types are rejected regardless of cost,
// frequency or pattern.
func (a *Admission) ShouldCache(key string, ct ContentType, cost float64, snap *PatternSnapshot, active Strategy) bool {
	if !a.cfg.Cacheable(ct) {
		return false
	}
	return a.Score(key, cost, snap, active) > a.cfg.AdmissionThreshold
}

// Score computes the weighted admission score in [0,1].
func (a *Admission) Score(key string, cost float64, snap *PatternSnapshot, active Strategy) float64 {
	freq := a.recorder.CountSince(key, a.now().Add(-a.cfg.LearningWindow))
	frequencyScore := math.Min(1.0, float64(freq)/10)
	costScore := math.Min(1.0, cost/0.01)
	patternScore := a.patternScore(key, snap, active)

	return a.cfg.FrequencyWeight*frequencyScore +
		a.cfg.CostWeight*costScore +
		a.cfg.PatternWeight*patternScore
}

// patternScore is 0.8 when the key's observed behavior lines up with
// the active strategy, else 0.5. A key counts as aligned when it is
// hot or warm in the current snapshot and the snapshot's recommended
// strategy is the one in force.
func (a *Admission) patternScore(key string, snap *PatternSnapshot, active Strategy) float64 {
	if snap == nil || snap.Pattern == PatternInsufficient {
		return 0.5
	}
	class, seen := snap.Frequency.Classes[key]
	if !seen || class == KeyCold {
		return 0.5
	}
	if defaultProfiles[snap.Pattern].CacheStrategy == active {
		return 0.8
	}
	return 0.5
}
