// Package cache provides caching implementations for Verdict actor snapshots.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/trackline/verdict"
	"github.com/trackline/verdict/id"
)

// Compile-time interface check.
var _ verdict.SnapshotCache = (*Memory)(nil)

// Memory is an in-memory snapshot cache with TTL-based expiration.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	maxSize int
}

type entry struct {
	snap      *verdict.Snapshot
	expiresAt time.Time
}

// MemoryOption configures the memory cache.
type MemoryOption func(*Memory)

// WithTTL sets the cache entry time-to-live.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) { m.ttl = ttl }
}

// WithMaxSize sets the maximum number of cache entries.
func WithMaxSize(n int) MemoryOption {
	return func(m *Memory) { m.maxSize = n }
}

// NewMemory creates a new in-memory snapshot cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]*entry),
		ttl:     5 * time.Minute,
		maxSize: 10000,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns a cached snapshot for an actor.
func (m *Memory) Get(_ context.Context, actorID id.UserID) (*verdict.Snapshot, bool) {
	key := actorID.String()
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}
	return e.snap, true
}

// Set stores an actor snapshot in the cache.
func (m *Memory) Set(_ context.Context, actorID id.UserID, snap *verdict.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Evict if at capacity.
	if len(m.entries) >= m.maxSize {
		m.evictExpired()
		if len(m.entries) >= m.maxSize {
			m.evictOne()
		}
	}

	m.entries[actorID.String()] = &entry{
		snap:      snap,
		expiresAt: time.Now().Add(m.ttl),
	}
}

// InvalidateActor removes the cached snapshot for an actor.
func (m *Memory) InvalidateActor(_ context.Context, actorID id.UserID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, actorID.String())
}

// InvalidateAll removes every cached snapshot.
func (m *Memory) InvalidateAll(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*entry)
}

// evictExpired removes all expired entries. Must hold write lock.
func (m *Memory) evictExpired() {
	now := time.Now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}

// evictOne removes one arbitrary entry. Must hold write lock.
func (m *Memory) evictOne() {
	for k := range m.entries {
		delete(m.entries, k)
		return
	}
}
