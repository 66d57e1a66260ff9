// internal/learning/analyzer_test.go
package learning

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testAnalyzer() *Analyzer {
	return NewAnalyzer(DefaultConfig(), zap.NewNop())
}

func TestAnalyzer_InsufficientData(t *testing.T) {
	analyzer := testAnalyzer()
	now := time.Now()

	// Zero records
	snap := analyzer.Analyze(nil, now)
	require.NotNil(t, snap)
	assert.Equal(t, PatternInsufficient, snap.Pattern)
	assert.Equal(t, 0.0, snap.Confidence)

	// Nine records is still below the threshold
	var records []AccessRecord
	for i := 0; i < 9; i++ {
		records = append(records, AccessRecord{
			Key:       "key-1",
			Op:        OpGet,
			Timestamp: now.Add(-time.Minute),
		})
	}
	snap = analyzer.Analyze(records, now)
	assert.Equal(t, PatternInsufficient, snap.Pattern)
	assert.Equal(t, 0.0, snap.Confidence)
}

func TestAnalyzer_BurstPattern(t *testing.T) {
	analyzer := testAnalyzer()
	now := time.Now()

	// 100 accesses to a single key within five minutes
	var records []AccessRecord
	for i := 0; i < 100; i++ {
		records = append(records, AccessRecord{
			Key:       "chat:prompt-42",
			Op:        OpGet,
			Timestamp: now.Add(-time.Duration(i) * 2 * time.Second),
		})
	}

	snap := analyzer.Analyze(records, now)
	assert.Equal(t, PatternBurst, snap.Pattern)
	assert.Greater(t, snap.Confidence, 0.7)
	for p, score := range snap.Scores {
		assert.LessOrEqual(t, score, snap.Scores[PatternBurst],
			"burst should be the maximum score, %s exceeds it", p)
	}
	assert.Equal(t, VarianceHigh, snap.Temporal.VarianceLevel)
	assert.Equal(t, 1, snap.Frequency.HotKeys)
}

func TestAnalyzer_SteadyPattern(t *testing.T) {
	analyzer := testAnalyzer()
	now := time.Now()

	// 200 accesses spread evenly over the day across 50 keys
	var records []AccessRecord
	for i := 0; i < 200; i++ {
		records = append(records, AccessRecord{
			Key:       fmt.Sprintf("doc:%d", i%50),
			Op:        OpGet,
			Timestamp: now.Add(-time.Duration(i) * 7 * time.Minute),
		})
	}

	snap := analyzer.Analyze(records, now)
	assert.Equal(t, PatternSteady, snap.Pattern)
	assert.Equal(t, VarianceLow, snap.Temporal.VarianceLevel)
	assert.Zero(t, snap.Frequency.HotKeys)
}

func TestAnalyzer_ContextualPattern(t *testing.T) {
	analyzer := testAnalyzer()
	now := time.Now()

	// Four sessions of twelve accesses each, spread across the day
	var records []AccessRecord
	for s := 0; s < 4; s++ {
		for i := 0; i < 12; i++ {
			records = append(records, AccessRecord{
				Key:       fmt.Sprintf("file:%d-%d", s, i),
				Op:        OpGet,
				Timestamp: now.Add(-time.Duration(s*12+i) * 25 * time.Minute),
				Context:   AccessContext{SessionID: fmt.Sprintf("session-%d", s)},
			})
		}
	}

	snap := analyzer.Analyze(records, now)
	assert.Equal(t, PatternContextual, snap.Pattern)
	assert.Equal(t, 1.0, snap.Contextual.SessionCorrelation)
	assert.Equal(t, 4, snap.Contextual.SessionCount)
	assert.InDelta(t, 12.0, snap.Contextual.MeanSessionSize, 0.01)
}

func TestAnalyzer_AnalyticalPattern(t *testing.T) {
	analyzer := testAnalyzer()
	now := time.Now()

	// Every access hits reporting keys, clustered tightly enough that
	// nothing else scores higher.
	var records []AccessRecord
	for i := 0; i < 60; i++ {
		key := fmt.Sprintf("report:monthly-%d", i%6)
		if i%2 == 0 {
			key = fmt.Sprintf("stats:usage-%d", i%6)
		}
		records = append(records, AccessRecord{
			Key:       key,
			Op:        OpGet,
			Timestamp: now.Add(-time.Duration(i) * time.Second),
		})
	}

	snap := analyzer.Analyze(records, now)
	assert.Equal(t, PatternAnalytical, snap.Pattern)
	assert.Equal(t, 1.0, snap.Scores[PatternAnalytical])
}

func TestAnalyzer_ConfidenceAlwaysInRange(t *testing.T) {
	analyzer := testAnalyzer()
	now := time.Now()

	cases := [][]AccessRecord{
		nil,
		burstRecords(now, 500),
		sessionRecords(now, 20, 20),
	}
	for _, records := range cases {
		snap := analyzer.Analyze(records, now)
		assert.GreaterOrEqual(t, snap.Confidence, 0.0)
		assert.LessOrEqual(t, snap.Confidence, 1.0)
		for _, score := range snap.Scores {
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
		assert.Contains(t, []PatternType{
			PatternBurst, PatternSteady, PatternSporadic,
			PatternContextual, PatternAnalytical, PatternInsufficient,
		}, snap.Pattern)
	}
}

func TestAnalyzer_TrendDetection(t *testing.T) {
	analyzer := testAnalyzer()
	now := time.Now()

	// Heavy traffic in the most recent hours, nothing earlier:
	// the second half of the window clearly outweighs the first.
	var records []AccessRecord
	for i := 0; i < 50; i++ {
		records = append(records, AccessRecord{
			Key:       fmt.Sprintf("k%d", i%5),
			Op:        OpGet,
			Timestamp: now.Add(-time.Duration(i) * time.Minute),
		})
	}

	snap := analyzer.Analyze(records, now)
	assert.Equal(t, TrendIncreasing, snap.Temporal.Trend)
}

func TestAnalyzer_SingleBucketWindow(t *testing.T) {
	// A window no wider than one bucket leaves no halves to compare for
	// the trend; it must read as stable, not NaN.
	cfg := DefaultConfig()
	cfg.LearningWindow = 5 * time.Minute
	cfg.BucketSize = 5 * time.Minute
	analyzer := NewAnalyzer(cfg, zap.NewNop())
	now := time.Now()

	var records []AccessRecord
	for i := 0; i < 12; i++ {
		records = append(records, AccessRecord{
			Key:       "k",
			Op:        OpGet,
			Timestamp: now.Add(-time.Duration(i) * time.Second),
		})
	}

	snap := analyzer.Analyze(records, now)
	assert.Equal(t, 1, snap.Temporal.BucketCount)
	assert.Equal(t, TrendStable, snap.Temporal.Trend)
	assert.Equal(t, 12.0, snap.Temporal.MeanAccesses)
	assert.GreaterOrEqual(t, snap.Confidence, 0.0)
	assert.LessOrEqual(t, snap.Confidence, 1.0)
}

func TestAnalyzer_FrequencyClasses(t *testing.T) {
	analyzer := testAnalyzer()
	now := time.Now()

	// One dominant key, a mid-tier key, and a long tail.
	var records []AccessRecord
	add := func(key string, count int) {
		for i := 0; i < count; i++ {
			records = append(records, AccessRecord{
				Key: key, Op: OpGet,
				Timestamp: now.Add(-time.Duration(len(records)) * time.Minute),
			})
		}
	}
	add("hot-key", 40) // ~38% of 104
	add("warm-key", 4) // ~3.8%
	for i := 0; i < 60; i++ {
		add(fmt.Sprintf("cold-%d", i), 1) // <1% each
	}

	snap := analyzer.Analyze(records, now)
	require.Equal(t, 104, snap.Frequency.TotalAccesses)
	assert.Equal(t, KeyHot, snap.Frequency.Classes["hot-key"])
	assert.Equal(t, KeyWarm, snap.Frequency.Classes["warm-key"])
	assert.Equal(t, KeyCold, snap.Frequency.Classes["cold-0"])
	assert.Equal(t, "hot-key", snap.Frequency.Keys[0].Key)
	assert.Greater(t, snap.Frequency.Entropy, 0.0)
}

func TestAnalyzer_PeakBuckets(t *testing.T) {
	analyzer := testAnalyzer()
	now := time.Now()

	// A spike on top of light background traffic.
	var records []AccessRecord
	for i := 0; i < 12; i++ {
		records = append(records, AccessRecord{
			Key: "background", Op: OpGet,
			Timestamp: now.Add(-time.Duration(i) * 2 * time.Hour),
		})
	}
	for i := 0; i < 40; i++ {
		records = append(records, AccessRecord{
			Key: "spike", Op: OpGet,
			Timestamp: now.Add(-time.Minute),
		})
	}

	snap := analyzer.Analyze(records, now)
	assert.NotEmpty(t, snap.Temporal.PeakBuckets)
}

func burstRecords(now time.Time, n int) []AccessRecord {
	records := make([]AccessRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, AccessRecord{
			Key: "burst-key", Op: OpGet,
			Timestamp: now.Add(-time.Duration(i) * time.Second),
		})
	}
	return records
}

func sessionRecords(now time.Time, sessions, perSession int) []AccessRecord {
	var records []AccessRecord
	for s := 0; s < sessions; s++ {
		for i := 0; i < perSession; i++ {
			records = append(records, AccessRecord{
				Key: fmt.Sprintf("s%d-k%d", s, i), Op: OpGet,
				Timestamp: now.Add(-time.Duration(s*perSession+i) * time.Minute),
				Context:   AccessContext{SessionID: fmt.Sprintf("sess-%d", s)},
			})
		}
	}
	return records
}
