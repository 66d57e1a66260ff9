// internal/learning/engine.go
package learning

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/FairForge/adaptcache/internal/metrics"
)

// Store is the external key-value collaborator. The engine never
// surfaces its errors: a failed get degrades to a miss, a failed put
// to a skip.
type Store interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Put(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// Engine owns the learning state: history, pattern snapshot, strategy,
// and prediction tables. Construct it explicitly at startup and Close
// it at shutdown; there is no hidden global.
type Engine struct {
	cfg    Config
	logger *zap.Logger

	store     Store
	recorder  *Recorder
	analyzer  *Analyzer
	selector  *Selector
	calc      *Calculator
	admission *Admission
	warmer    *Warmer
	feedback  *Feedback
	metrics   *metrics.Collector

	mu       sync.RWMutex
	snapshot *PatternSnapshot
	closed   bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEngine wires the learning components around a store and an
// optional prefetch fetcher.
func NewEngine(cfg Config, store Store, fetcher Fetcher, logger *zap.Logger) *Engine {
	recorder := NewRecorder(cfg)
	feedback := NewFeedback(logger)
	ctx, cancel := context.WithCancel(context.Background())

	e := &Engine{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		recorder:  recorder,
		analyzer:  NewAnalyzer(cfg, logger),
		selector:  NewSelector(cfg),
		calc:      NewCalculator(cfg, recorder),
		admission: NewAdmission(cfg, recorder),
		warmer:    NewWarmer(cfg, recorder, feedback, fetcher, logger),
		feedback:  feedback,
		metrics:   metrics.NewCollector(),
		ctx:       ctx,
		cancel:    cancel,
	}

	// Never hand out a nil snapshot.
	e.snapshot = &PatternSnapshot{
		Pattern:    PatternInsufficient,
		Confidence: 0.0,
		Scores:     zeroScores(),
		AnalyzedAt: time.Now(),
	}

	return e
}

// Close cancels background warming and waits for it to drain. Warming
// requested after Close is a no-op.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()
}

// Recorder exposes the access ledger for collaborators that feed it
// directly.
func (e *Engine) Recorder() *Recorder { return e.recorder }

// AdaptiveGet reads a key through the learning layer. Store failures
// degrade to a miss.
func (e *Engine) AdaptiveGet(ctx context.Context, namespace, key string) ([]byte, bool) {
	value, found, err := e.store.Get(ctx, namespace, key)
	if err != nil {
		e.logger.Warn("store get failed, degrading to miss",
			zap.String("key", key), zap.Error(err))
		e.metrics.RecordStoreError("get")
		found = false
	}

	op := OpMiss
	if found {
		op = OpHit
		e.metrics.RecordHit()
	} else {
		e.metrics.RecordMiss()
	}

	e.recorder.Record(key, op, AccessContext{})
	e.feedback.RecordOutcome(key, op)

	if !found {
		return nil, false
	}
	return value, true
}

// AdaptivePut writes a value if admission allows it, with an adaptive
// TTL. Returns true when the value was cached, false when skipped.
// Store failures degrade to skipped.
func (e *Engine) AdaptivePut(ctx context.Context, namespace, key string, value []byte, ct ContentType, meta map[string]interface{}, cost float64) bool {
	if !e.ShouldCache(key, ct, cost) {
		e.recorder.RecordMeta(key, OpSkip, AccessContext{}, meta)
		e.metrics.RecordAdmission(false)
		return false
	}
	e.metrics.RecordAdmission(true)

	ttl := e.AdaptiveTTL(key, ct, withCost(meta, cost))
	if err := e.store.Put(ctx, namespace, key, value, ttl); err != nil {
		// Admission said yes; the failure is the store's, not a skip.
		e.logger.Warn("store put failed, skipping cache",
			zap.String("key", key), zap.Error(err))
		e.metrics.RecordStoreError("put")
		return false
	}

	e.recorder.RecordMeta(key, OpPut, AccessContext{}, withCost(meta, cost))
	e.feedback.RecordOutcome(key, OpPut)
	return true
}

// AdaptiveTTL computes the TTL for a key against the most recent
// snapshot. Never fails; unknown content types use default bounds.
func (e *Engine) AdaptiveTTL(key string, ct ContentType, meta map[string]interface{}) time.Duration {
	e.mu.RLock()
	pattern := e.snapshot.Pattern
	e.mu.RUnlock()

	ttl := e.calc.TTL(key, ct, meta, pattern, e.selector.Active())
	e.metrics.RecordTTL(string(ct), ttl)
	return ttl
}

// ShouldCache runs the admission decision against the most recent
// snapshot.
func (e *Engine) ShouldCache(key string, ct ContentType, cost float64) bool {
	e.mu.RLock()
	snap := e.snapshot
	e.mu.RUnlock()

	return e.admission.ShouldCache(key, ct, cost, snap, e.selector.Active())
}

// PatternAnalysis returns the active strategy and the current
// snapshot. Idempotent: with no intervening analysis the same snapshot
// is returned. Callers must treat the snapshot as read-only.
func (e *Engine) PatternAnalysis() (Strategy, *PatternSnapshot) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selector.Active(), e.snapshot
}

// StrategyParams exposes the static tuning for the given strategy.
func (e *Engine) StrategyParams(s Strategy) StrategyParams {
	return e.selector.Params(s)
}

// WarmCache triggers background warming, fire-and-forget. After Close
// the request is dropped.
func (e *Engine) WarmCache(strategy WarmStrategy, limit int) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()
		warmed := e.warmer.Warm(e.ctx, strategy, limit)
		e.metrics.RecordPrefetches(string(strategy), warmed)
	}()
}

// ForceOptimization runs an immediate analysis cycle and then the
// pattern-driven warming pass. Operational and testing hook.
func (e *Engine) ForceOptimization() {
	if err := e.AnalyzePatterns(e.ctx); err != nil {
		e.logger.Error("forced analysis failed", zap.Error(err))
	}
	if err := e.OptimizeCache(e.ctx); err != nil {
		e.logger.Error("forced optimization failed", zap.Error(err))
	}
}

// AnalyzePatterns is the periodic analysis job. It reads a consistent
// copy of the window's history, classifies it, swaps the snapshot
// wholesale and re-selects the strategy.
func (e *Engine) AnalyzePatterns(ctx context.Context) error {
	start := time.Now()
	records := e.recorder.Query(start.Add(-e.cfg.LearningWindow))
	snap := e.analyzer.Analyze(records, start)
	strategy := e.selector.Select(snap)

	e.mu.Lock()
	e.snapshot = snap
	e.mu.Unlock()

	e.metrics.RecordAnalysis(string(snap.Pattern), snap.Confidence, time.Since(start))
	e.logger.Info("pattern snapshot updated",
		zap.String("pattern", string(snap.Pattern)),
		zap.Float64("confidence", snap.Confidence),
		zap.String("strategy", string(strategy)),
		zap.Int("records", snap.Records))
	return nil
}

// OptimizeCache is the periodic optimization job: prune stale history
// and warm according to the dominant pattern. Reads a snapshot, then
// issues a bounded number of prefetches without holding engine locks.
func (e *Engine) OptimizeCache(ctx context.Context) error {
	dropped := e.recorder.Prune()
	if dropped > 0 {
		e.logger.Debug("pruned access history", zap.Int("dropped", dropped))
	}

	e.mu.RLock()
	pattern := e.snapshot.Pattern
	e.mu.RUnlock()

	strategy, warmed := e.warmer.Optimize(ctx, pattern)
	if strategy != "" {
		e.metrics.RecordPrefetches(string(strategy), warmed)
	}
	return nil
}

// cacheEventPayload is the wire shape of cache.* bus events.
type cacheEventPayload struct {
	Key       string                 `json:"key"`
	SessionID string                 `json:"session_id,omitempty"`
	Provider  string                 `json:"provider,omitempty"`
	Model     string                 `json:"model,omitempty"`
	UserID    string                 `json:"user_id,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// OnCacheEvent folds a cache.* bus event into the ledger. Malformed or
// unrecognized payloads are debug-logged no-ops.
func (e *Engine) OnCacheEvent(topic string, payload []byte) {
	var ev cacheEventPayload
	if err := json.Unmarshal(payload, &ev); err != nil || ev.Key == "" {
		e.logger.Debug("ignoring malformed cache event",
			zap.String("topic", topic), zap.Error(err))
		return
	}

	op, ok := topicOperation(topic)
	if !ok {
		e.logger.Debug("ignoring unknown cache topic", zap.String("topic", topic))
		return
	}

	e.recorder.RecordMeta(ev.Key, op, AccessContext{
		SessionID: ev.SessionID,
		Provider:  ev.Provider,
		Model:     ev.Model,
		UserID:    ev.UserID,
	}, ev.Metadata)
	e.feedback.RecordOutcome(ev.Key, op)
}

// OnCompletion folds an upstream request completion into the
// prediction tables. Best-effort; never fails the caller.
func (e *Engine) OnCompletion(c Completion) {
	e.feedback.RecordCompletion(c)
}

func topicOperation(topic string) (Operation, bool) {
	idx := strings.LastIndex(topic, ".")
	if idx < 0 {
		return "", false
	}
	switch Operation(topic[idx+1:]) {
	case OpGet:
		return OpGet, true
	case OpPut:
		return OpPut, true
	case OpHit:
		return OpHit, true
	case OpMiss:
		return OpMiss, true
	case OpSkip:
		return OpSkip, true
	default:
		return "", false
	}
}

func withCost(meta map[string]interface{}, cost float64) map[string]interface{} {
	if cost <= 0 {
		return meta
	}
	out := make(map[string]interface{}, len(meta)+1)
	for k, v := range meta {
		out[k] = v
	}
	if _, ok := out["cost"]; !ok {
		out["cost"] = cost
	}
	return out
}
