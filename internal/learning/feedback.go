// internal/learning/feedback.go
package learning

import (
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// signatureTokens is how many leading tokens of a prompt or key feed
// the access signature.
const signatureTokens = 8

// maxPredictions bounds the prediction table; the stalest entry is
// evicted when the table is full.
const maxPredictions = 4096

// prediction accumulates demand evidence for one access signature.
type prediction struct {
	Signature   uint64
	Completions int64
	Hits        int64
	LastSeen    time.Time
	Keys        map[string]int64
}

// Feedback folds cache outcomes and upstream completions back into the
// prediction table. Purely additive and best-effort: nothing here may
// fail or delay the operation that triggered it.
type Feedback struct {
	mu      sync.RWMutex
	entries map[uint64]*prediction
	logger  *zap.Logger
	now     func() time.Time
}

// NewFeedback creates the feedback loop.
func NewFeedback(logger *zap.Logger) *Feedback {
	return &Feedback{
		entries: make(map[uint64]*prediction),
		logger:  logger,
		now:     time.Now,
	}
}

// Signature hashes the first few whitespace tokens of a prompt or key
// into a stable access-pattern signature.
func Signature(s string) uint64 {
	fields := strings.Fields(s)
	if len(fields) > signatureTokens {
		fields = fields[:signatureTokens]
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.Join(fields, " ")))
	return h.Sum64()
}

// RecordOutcome notes the result of a cache get/put for a key.
func (f *Feedback) RecordOutcome(key string, op Operation) {
	sig := Signature(key)

	f.mu.Lock()
	defer f.mu.Unlock()

	entry := f.entry(sig)
	if op == OpHit {
		entry.Hits++
	}
	entry.Keys[key]++
	entry.LastSeen = f.now()
}

// RecordCompletion notes a finished upstream request. The completion's
// response text keys the signature, so repeated prompts accumulate.
func (f *Feedback) RecordCompletion(c Completion) {
	text := c.Response
	if text == "" {
		text = c.Result
	}
	sig := Signature(text)

	f.mu.Lock()
	defer f.mu.Unlock()

	entry := f.entry(sig)
	entry.Completions++
	entry.LastSeen = f.now()
}

// PredictKeys returns the keys with the strongest accumulated demand,
// most-demanded first.
func (f *Feedback) PredictKeys(limit int) []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	counts := make(map[string]int)
	for _, entry := range f.entries {
		weight := entry.Hits + entry.Completions
		for key, n := range entry.Keys {
			counts[key] += int(n + weight)
		}
	}
	return topByCount(counts, limit)
}

// Size returns the number of tracked signatures.
func (f *Feedback) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.entries)
}

// entry fetches or creates the prediction for a signature, evicting
// the stalest entry when the table is full. Caller holds f.mu.
func (f *Feedback) entry(sig uint64) *prediction {
	if e, ok := f.entries[sig]; ok {
		return e
	}

	if len(f.entries) >= maxPredictions {
		var oldest uint64
		var oldestSeen time.Time
		first := true
		for s, e := range f.entries {
			if first || e.LastSeen.Before(oldestSeen) {
				oldest = s
				oldestSeen = e.LastSeen
				first = false
			}
		}
		delete(f.entries, oldest)
		f.logger.Debug("prediction table full, evicted stalest signature")
	}

	e := &prediction{
		Signature: sig,
		Keys:      make(map[string]int64),
		LastSeen:  f.now(),
	}
	f.entries[sig] = e
	return e
}
