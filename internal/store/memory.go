// internal/store/memory.go
package store

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/snappy"
)

// compressThreshold is the value size above which entries are snappy
// compressed. LLM response bodies are large text and compress well.
const compressThreshold = 512

// entry is a single cached value.
type entry struct {
	key        string
	data       []byte
	compressed bool
	expiresAt  time.Time
	lastAccess time.Time
}

// Memory is an in-memory LRU store with per-entry TTLs. It implements
// the engine's Store collaborator.
type Memory struct {
	mu       sync.RWMutex
	capacity int
	items    map[string]*list.Element
	lruList  *list.List

	hits      int64
	misses    int64
	evictions int64
	expired   int64
}

// NewMemory creates an in-memory store holding up to capacity entries.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 10000
	}
	return &Memory{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		lruList:  list.New(),
	}
}

func storeKey(namespace, key string) string {
	return fmt.Sprintf("%s/%s", namespace, key)
}

// Get retrieves a value. Expired entries are dropped on read and
// reported as misses.
func (m *Memory) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := storeKey(namespace, key)
	elem, exists := m.items[k]
	if !exists {
		m.misses++
		return nil, false, nil
	}

	e := elem.Value.(*entry)
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		m.lruList.Remove(elem)
		delete(m.items, k)
		m.expired++
		m.misses++
		return nil, false, nil
	}

	m.lruList.MoveToFront(elem)
	e.lastAccess = time.Now()
	m.hits++

	if e.compressed {
		data, err := snappy.Decode(nil, e.data)
		if err != nil {
			// Corrupt entry: drop it and report a miss.
			m.lruList.Remove(elem)
			delete(m.items, k)
			m.hits--
			m.misses++
			return nil, false, fmt.Errorf("store get: decompress %s: %w", k, err)
		}
		return data, true, nil
	}

	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, true, nil
}

// Put stores a value with the given TTL, evicting the least recently
// used entry at capacity.
func (m *Memory) Put(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	data := value
	compressed := false
	if len(value) > compressThreshold {
		data = snappy.Encode(nil, value)
		compressed = true
	} else {
		data = make([]byte, len(value))
		copy(data, value)
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	k := storeKey(namespace, key)
	if elem, exists := m.items[k]; exists {
		m.lruList.MoveToFront(elem)
		e := elem.Value.(*entry)
		e.data = data
		e.compressed = compressed
		e.expiresAt = expiresAt
		e.lastAccess = time.Now()
		return nil
	}

	e := &entry{
		key:        k,
		data:       data,
		compressed: compressed,
		expiresAt:  expiresAt,
		lastAccess: time.Now(),
	}
	m.items[k] = m.lruList.PushFront(e)

	if m.lruList.Len() > m.capacity {
		m.evictOldest()
	}
	return nil
}

// Delete removes an entry if present.
func (m *Memory) Delete(ctx context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := storeKey(namespace, key)
	if elem, exists := m.items[k]; exists {
		m.lruList.Remove(elem)
		delete(m.items, k)
	}
	return nil
}

// Clear removes all entries and resets statistics.
func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string]*list.Element)
	m.lruList = list.New()
	m.hits = 0
	m.misses = 0
	m.evictions = 0
	m.expired = 0
	return nil
}

func (m *Memory) evictOldest() {
	elem := m.lruList.Back()
	if elem == nil {
		return
	}
	m.lruList.Remove(elem)
	delete(m.items, elem.Value.(*entry).key)
	m.evictions++
}

// Stats holds store statistics.
type Stats struct {
	Items     int   `json:"items"`
	Capacity  int   `json:"capacity"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Expired   int64 `json:"expired"`
}

// HitRate returns the fraction of gets served from the store.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats returns current store statistics.
func (m *Memory) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Stats{
		Items:     m.lruList.Len(),
		Capacity:  m.capacity,
		Hits:      m.hits,
		Misses:    m.misses,
		Evictions: m.evictions,
		Expired:   m.expired,
	}
}
