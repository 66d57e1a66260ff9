// internal/learning/warmer.go
package learning

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Fetcher issues a pre-fetch or pre-compute for a key so the external
// store ends up populated. Implementations talk to whatever produces
// the expensive value.
type Fetcher interface {
	Prefetch(ctx context.Context, key string) error
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, key string) error

// Prefetch implements Fetcher.
func (f FetcherFunc) Prefetch(ctx context.Context, key string) error {
	return f(ctx, key)
}

// warmPlan maps a dominant pattern to the warming call the optimizer
// issues for it.
var warmPlan = map[PatternType]struct {
	strategy WarmStrategy
	limit    int
}{
	PatternBurst:      {WarmFrequency, 50},
	PatternSteady:     {WarmFrequency, 20},
	PatternSporadic:   {WarmFrequency, 10},
	PatternContextual: {WarmContextual, 30},
	PatternAnalytical: {WarmPredictive, 25},
}

// activeSessionWindow bounds which sessions count as currently active
// for contextual warming.
const activeSessionWindow = 30 * time.Minute

// Warmer proactively pre-populates likely-hot entries. All work is
// best-effort: prefetch failures are logged and never propagated.
type Warmer struct {
	recorder *Recorder
	feedback *Feedback
	fetcher  Fetcher
	limiter  *rate.Limiter
	logger   *zap.Logger
	now      func() time.Time
}

// NewWarmer creates a cache warmer bounded by the configured prefetch
// rate.
func NewWarmer(cfg Config, recorder *Recorder, feedback *Feedback, fetcher Fetcher, logger *zap.Logger) *Warmer {
	return &Warmer{
		recorder: recorder,
		feedback: feedback,
		fetcher:  fetcher,
		limiter:  rate.NewLimiter(rate.Limit(cfg.PrefetchPerSecond), cfg.PrefetchBurst),
		logger:   logger,
		now:      time.Now,
	}
}

// Warm selects up to limit candidate keys for the strategy and issues
// rate-limited prefetches. Returns how many prefetches succeeded.
func (w *Warmer) Warm(ctx context.Context, strategy WarmStrategy, limit int) int {
	if w.fetcher == nil || limit <= 0 {
		return 0
	}

	keys := w.candidates(strategy, limit)
	warmed := 0
	for _, key := range keys {
		if err := w.limiter.Wait(ctx); err != nil {
			return warmed // context cancelled
		}
		if err := w.fetcher.Prefetch(ctx, key); err != nil {
			w.logger.Debug("prefetch failed",
				zap.String("key", key),
				zap.String("strategy", string(strategy)),
				zap.Error(err))
			continue
		}
		warmed++
	}

	if warmed > 0 {
		w.logger.Info("cache warming complete",
			zap.String("strategy", string(strategy)),
			zap.Int("warmed", warmed),
			zap.Int("candidates", len(keys)))
	}
	return warmed
}

// Optimize issues the warming call matching the dominant pattern and
// reports which strategy it used.
func (w *Warmer) Optimize(ctx context.Context, pattern PatternType) (WarmStrategy, int) {
	plan, ok := warmPlan[pattern]
	if !ok {
		return "", 0 // insufficient data: nothing worth warming yet
	}
	return plan.strategy, w.Warm(ctx, plan.strategy, plan.limit)
}

func (w *Warmer) candidates(strategy WarmStrategy, limit int) []string {
	switch strategy {
	case WarmPredictive:
		return w.feedback.PredictKeys(limit)
	case WarmFrequency:
		return w.recorder.TopKeys(w.now().Add(-time.Hour), limit)
	case WarmTemporal:
		return w.recorder.HourlyHotKeys(w.now().Hour(), limit)
	case WarmContextual:
		return w.recorder.SessionKeys(w.now().Add(-activeSessionWindow), limit)
	default:
		w.logger.Debug("unknown warm strategy", zap.String("strategy", string(strategy)))
		return nil
	}
}
