// internal/events/events.go
package events

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

// Event is one message on the bus.
type Event struct {
	ID        string          `json:"id"`
	Topic     string          `json:"topic"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// Handler processes a delivered event.
type Handler func(ctx context.Context, event Event)

// cacheEventSchema validates cache.* payloads.
const cacheEventSchema = `{
	"type": "object",
	"required": ["key"],
	"properties": {
		"key": {"type": "string", "minLength": 1},
		"session_id": {"type": "string"},
		"provider": {"type": "string"},
		"model": {"type": "string"},
		"user_id": {"type": "string"},
		"metadata": {"type": "object"}
	}
}`

// completionSchema validates llm.* payloads.
const completionSchema = `{
	"type": "object",
	"required": ["result"],
	"properties": {
		"result": {"type": "string"},
		"provider": {"type": "string"},
		"model": {"type": "string"},
		"response": {"type": "string"},
		"cost": {"type": "number", "minimum": 0}
	}
}`

// Bus is an in-memory pub/sub transport for cache.* and llm.* topics.
// Payloads for known topic families are schema-validated on publish;
// malformed payloads are dropped with a debug log and no state change.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	schemas  map[string]*gojsonschema.Schema
	logger   *zap.Logger
}

// NewBus creates the event bus.
func NewBus(logger *zap.Logger) (*Bus, error) {
	schemas := make(map[string]*gojsonschema.Schema, 2)
	for prefix, raw := range map[string]string{
		"cache.": cacheEventSchema,
		"llm.":   completionSchema,
	} {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
		if err != nil {
			return nil, err
		}
		schemas[prefix] = schema
	}

	return &Bus{
		handlers: make(map[string][]Handler),
		schemas:  schemas,
		logger:   logger,
	}, nil
}

// Publish validates and delivers an event to all matching subscribers.
// Delivery is asynchronous; Publish never blocks on handlers.
func (b *Bus) Publish(ctx context.Context, topic string, payload json.RawMessage) {
	if !b.validate(topic, payload) {
		return
	}

	event := Event{
		ID:        uuid.NewString(),
		Topic:     topic,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for pattern, handlers := range b.handlers {
		if !matchTopic(topic, pattern) {
			continue
		}
		for _, handler := range handlers {
			go handler(ctx, event)
		}
	}
}

// Subscribe registers a handler for a topic pattern. Patterns support
// a trailing wildcard segment, e.g. "cache.*".
func (b *Bus) Subscribe(pattern string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[pattern] = append(b.handlers[pattern], handler)
}

// validate checks the payload against the topic family's schema.
// Unknown topic families and invalid payloads are no-ops.
func (b *Bus) validate(topic string, payload json.RawMessage) bool {
	var schema *gojsonschema.Schema
	for prefix, s := range b.schemas {
		if strings.HasPrefix(topic, prefix) {
			schema = s
			break
		}
	}
	if schema == nil {
		b.logger.Debug("dropping event on unknown topic", zap.String("topic", topic))
		return false
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		b.logger.Debug("dropping unparseable event",
			zap.String("topic", topic), zap.Error(err))
		return false
	}
	if !result.Valid() {
		b.logger.Debug("dropping invalid event payload",
			zap.String("topic", topic),
			zap.Int("violations", len(result.Errors())))
		return false
	}
	return true
}

// matchTopic reports whether a topic matches a subscription pattern.
func matchTopic(topic, pattern string) bool {
	if pattern == "*" || pattern == topic {
		return true
	}
	if strings.HasSuffix(pattern, ".*") {
		return strings.HasPrefix(topic, strings.TrimSuffix(pattern, "*"))
	}
	return false
}
