// Package cache provides the injected TTL result cache used by the ranking
// tool. The interface is narrow on purpose: callers provide a fully
// deterministic key and the cache never inspects values.
package cache

import (
	"sync"
	"time"
)

// Stats is a point-in-time snapshot of cache activity. Hit rate is a
// percentage rounded to two decimal places.
type Stats struct {
	Hits          int64   `json:"hits"`
	Misses        int64   `json:"misses"`
	Sets          int64   `json:"sets"`
	Keys          int     `json:"keys"`
	HitRate       float64 `json:"hitRate"`
	TotalRequests int64   `json:"totalRequests"`
}

// Cache is a TTL key-value store. Implementations must be safe for
// concurrent use. Concurrent misses on the same key may each recompute and
// Set; results are deterministic for a given key, so last-write-wins is
// harmless.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Invalidate(key string)
	Flush()
	Stats() Stats
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Memory is an in-memory Cache with a background sweep that drops expired
// entries. Reads of an expired entry also miss immediately; the sweep only
// reclaims memory.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry

	hits   int64
	misses int64
	sets   int64

	stop chan struct{}
	once sync.Once
}

// NewMemory creates a cache whose sweep runs every sweepInterval. A zero
// interval disables sweeping.
func NewMemory(sweepInterval time.Duration) *Memory {
	m := &Memory{
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go m.sweepLoop(sweepInterval)
	}
	return m
}

// Close stops the sweep goroutine.
func (m *Memory) Close() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Memory) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		if ok {
			delete(m.entries, key)
		}
		m.misses++
		return nil, false
	}
	m.hits++
	return e.value, true
}

func (m *Memory) Set(key string, value any, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	m.sets++
}

func (m *Memory) Invalidate(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// Flush drops every entry. Metrics are kept.
func (m *Memory) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.entries)
}

func (m *Memory) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := m.hits + m.misses
	var rate float64
	if m.hits > 0 {
		rate = float64(m.hits) / float64(total) * 100
		rate = float64(int(rate*100+0.5)) / 100
	}
	return Stats{
		Hits:          m.hits,
		Misses:        m.misses,
		Sets:          m.sets,
		Keys:          len(m.entries),
		HitRate:       rate,
		TotalRequests: total,
	}
}

func (m *Memory) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.stop:
			return
		}
	}
}

func (m *Memory) sweep() {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}
