// internal/learning/feedback_test.go
package learning

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSignature_StableAndPrefixBased(t *testing.T) {
	assert.Equal(t, Signature("explain this code"), Signature("explain this code"))
	assert.NotEqual(t, Signature("explain this code"), Signature("summarize this code"))

	// Only the leading tokens matter: long prompts with the same prefix
	// share a signature.
	long := "one two three four five six seven eight nine ten"
	longer := "one two three four five six seven eight different tail"
	assert.Equal(t, Signature(long), Signature(longer))

	// Whitespace normalization
	assert.Equal(t, Signature("a  b\tc"), Signature("a b c"))
}

func TestFeedback_HitsStrengthenPrediction(t *testing.T) {
	f := NewFeedback(zap.NewNop())

	f.RecordOutcome("popular prompt", OpHit)
	f.RecordOutcome("popular prompt", OpHit)
	f.RecordOutcome("popular prompt", OpHit)
	f.RecordOutcome("rare prompt", OpMiss)

	keys := f.PredictKeys(10)
	require.NotEmpty(t, keys)
	assert.Equal(t, "popular prompt", keys[0])
}

func TestFeedback_CompletionsCountAsDemand(t *testing.T) {
	f := NewFeedback(zap.NewNop())

	// The key and the completion response share a signature, so the
	// completion boosts the key's weight.
	f.RecordOutcome("weather report for today", OpMiss)
	f.RecordCompletion(Completion{Response: "weather report for today"})
	f.RecordCompletion(Completion{Result: "weather report for today"})

	f.RecordOutcome("unrelated", OpMiss)

	keys := f.PredictKeys(10)
	require.NotEmpty(t, keys)
	assert.Equal(t, "weather report for today", keys[0])
}

func TestFeedback_PredictKeysHonorsLimit(t *testing.T) {
	f := NewFeedback(zap.NewNop())

	for i := 0; i < 20; i++ {
		f.RecordOutcome(fmt.Sprintf("key-%d", i), OpHit)
	}

	assert.Len(t, f.PredictKeys(5), 5)
	assert.Empty(t, f.PredictKeys(0))
}

func TestFeedback_TableBounded(t *testing.T) {
	f := NewFeedback(zap.NewNop())

	for i := 0; i < maxPredictions+100; i++ {
		f.RecordOutcome(fmt.Sprintf("sig-%d unique prompt text", i), OpMiss)
	}

	assert.LessOrEqual(t, f.Size(), maxPredictions)
}
