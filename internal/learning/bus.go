// internal/learning/bus.go
package learning

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/FairForge/adaptcache/internal/events"
)

// Attach subscribes the engine to the bus's cache.* and llm.* topics.
// The engine itself stays transport-agnostic: this is the only place
// bus events are translated into engine calls.
func Attach(bus *events.Bus, e *Engine) {
	bus.Subscribe("cache.*", func(ctx context.Context, ev events.Event) {
		e.OnCacheEvent(ev.Topic, ev.Payload)
	})

	bus.Subscribe("llm.*", func(ctx context.Context, ev events.Event) {
		var c Completion
		if err := json.Unmarshal(ev.Payload, &c); err != nil {
			e.logger.Debug("ignoring malformed completion event",
				zap.String("topic", ev.Topic), zap.Error(err))
			return
		}
		e.OnCompletion(c)
	})
}
