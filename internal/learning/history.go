// internal/learning/history.go
package learning

import (
	"hash/fnv"
	"sort"
	"sync"
	"time"
)

// maxAccessTimes bounds the per-key recency ring so foreground
// frequency lookups stay O(1).
const maxAccessTimes = 100

// pruneEvery triggers opportunistic shard pruning on append.
const pruneEvery = 1024

// shard holds one slice of the ledger under its own lock so writers
// on different keys never contend.
type shard struct {
	mu          sync.Mutex
	records     []AccessRecord
	accessTimes map[string][]time.Time
	lastAccess  map[string]time.Time
	appends     int
}

// Recorder is the append-only ledger of cache access events. Entries
// older than the learning window are pruned, never mutated.
type Recorder struct {
	shards []*shard
	window time.Duration
	now    func() time.Time
}

// NewRecorder creates a sharded access recorder.
func NewRecorder(cfg Config) *Recorder {
	n := cfg.Shards
	if n <= 0 {
		n = 16
	}
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{
			accessTimes: make(map[string][]time.Time),
			lastAccess:  make(map[string]time.Time),
		}
	}
	return &Recorder{
		shards: shards,
		window: cfg.LearningWindow,
		now:    time.Now,
	}
}

func (r *Recorder) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return r.shards[h.Sum32()%uint32(len(r.shards))]
}

// Record appends an access event stamped with the current time.
func (r *Recorder) Record(key string, op Operation, ctx AccessContext) {
	r.RecordMeta(key, op, ctx, nil)
}

// RecordMeta appends an access event with metadata attached.
func (r *Recorder) RecordMeta(key string, op Operation, ctx AccessContext, meta map[string]interface{}) {
	now := r.now()
	s := r.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, AccessRecord{
		Key:       key,
		Op:        op,
		Timestamp: now,
		Context:   ctx,
		Metadata:  meta,
	})

	times := append(s.accessTimes[key], now)
	if len(times) > maxAccessTimes {
		times = times[len(times)-maxAccessTimes:]
	}
	s.accessTimes[key] = times
	s.lastAccess[key] = now

	s.appends++
	if s.appends%pruneEvery == 0 {
		s.pruneLocked(now.Add(-r.window))
	}
}

// Query returns a copy of all records with timestamp >= since. Shards
// are read one at a time, so the view is internally consistent per
// shard but may be slightly stale overall.
func (r *Recorder) Query(since time.Time) []AccessRecord {
	var out []AccessRecord
	for _, s := range r.shards {
		s.mu.Lock()
		for _, rec := range s.records {
			if !rec.Timestamp.Before(since) {
				out = append(out, rec)
			}
		}
		s.mu.Unlock()
	}
	return out
}

// CountSince returns how many times a key was touched at or after
// since. Bounded by the per-key recency ring.
func (r *Recorder) CountSince(key string, since time.Time) int {
	s := r.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, t := range s.accessTimes[key] {
		if !t.Before(since) {
			count++
		}
	}
	return count
}

// LastAccess returns the most recent access to key, if any.
func (r *Recorder) LastAccess(key string) (time.Time, bool) {
	s := r.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.lastAccess[key]
	return t, ok
}

// TopKeys returns the n most-accessed keys since the given time.
func (r *Recorder) TopKeys(since time.Time, n int) []string {
	counts := make(map[string]int)
	for _, rec := range r.Query(since) {
		counts[rec.Key]++
	}
	return topByCount(counts, n)
}

// HourlyHotKeys returns the keys historically most active during the
// given hour of day, across the whole learning window.
func (r *Recorder) HourlyHotKeys(hour int, n int) []string {
	counts := make(map[string]int)
	for _, rec := range r.Query(r.now().Add(-r.window)) {
		if rec.Timestamp.Hour() == hour {
			counts[rec.Key]++
		}
	}
	return topByCount(counts, n)
}

// SessionKeys returns the keys touched by sessions active since the
// given time.
func (r *Recorder) SessionKeys(since time.Time, n int) []string {
	active := make(map[string]bool)
	for _, rec := range r.Query(since) {
		if rec.Context.SessionID != "" {
			active[rec.Context.SessionID] = true
		}
	}
	if len(active) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, rec := range r.Query(r.now().Add(-r.window)) {
		if active[rec.Context.SessionID] {
			counts[rec.Key]++
		}
	}
	return topByCount(counts, n)
}

// Prune drops all records older than the learning window.
func (r *Recorder) Prune() int {
	cutoff := r.now().Add(-r.window)
	dropped := 0
	for _, s := range r.shards {
		s.mu.Lock()
		dropped += s.pruneLocked(cutoff)
		s.mu.Unlock()
	}
	return dropped
}

// Size returns the number of retained records.
func (r *Recorder) Size() int {
	total := 0
	for _, s := range r.shards {
		s.mu.Lock()
		total += len(s.records)
		s.mu.Unlock()
	}
	return total
}

func (s *shard) pruneLocked(cutoff time.Time) int {
	// Records are appended in time order per shard, so find the first
	// survivor and cut once.
	idx := sort.Search(len(s.records), func(i int) bool {
		return !s.records[i].Timestamp.Before(cutoff)
	})
	if idx == 0 {
		return 0
	}
	s.records = append([]AccessRecord(nil), s.records[idx:]...)

	for key, times := range s.accessTimes {
		keep := times[:0]
		for _, t := range times {
			if !t.Before(cutoff) {
				keep = append(keep, t)
			}
		}
		if len(keep) == 0 {
			delete(s.accessTimes, key)
			delete(s.lastAccess, key)
			continue
		}
		s.accessTimes[key] = keep
	}
	return idx
}

func topByCount(counts map[string]int, n int) []string {
	type kv struct {
		key   string
		count int
	}
	sorted := make([]kv, 0, len(counts))
	for k, c := range counts {
		sorted = append(sorted, kv{k, c})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].key < sorted[j].key
	})

	out := make([]string, 0, n)
	for i := 0; i < n && i < len(sorted); i++ {
		out = append(out, sorted[i].key)
	}
	return out
}
