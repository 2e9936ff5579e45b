// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// entry is a cached value with its expiry.
type entry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is a thread-safe in-process Store. Expired entries are dropped on
// read and by a periodic sweep.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	stats   Stats

	stop     chan struct{}
	stopOnce sync.Once
}

// Stats tracks cache performance.
type Stats struct {
	mu          sync.RWMutex
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// NewMemory creates a memory store and starts its cleanup loop. A
// non-positive interval defaults to five minutes. Call Close to stop the loop.
func NewMemory(cleanupInterval time.Duration) *Memory {
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}

	m := &Memory{
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
		stats:   Stats{LastCleanup: time.Now()},
	}
	go m.cleanupLoop(cleanupInterval)
	return m
}

// Get returns a copy of the stored value.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		m.recordMiss()
		return nil, false, nil
	}

	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		// re-check: a concurrent Set may have refreshed the key
		if cur, still := m.entries[key]; still && time.Now().After(cur.expiresAt) {
			delete(m.entries, key)
			m.recordEviction(1)
		}
		m.mu.Unlock()
		m.recordMiss()
		return nil, false, nil
	}

	m.recordHit()
	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, true, nil
}

// Set stores a copy of value for ttl.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	data := make([]byte, len(value))
	copy(data, value)

	m.mu.Lock()
	m.entries[key] = entry{data: data, expiresAt: time.Now().Add(ttl)}
	n := len(m.entries)
	m.mu.Unlock()

	m.stats.mu.Lock()
	m.stats.TotalKeys = int64(n)
	m.stats.mu.Unlock()
	return nil
}

// Delete removes key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	_, ok := m.entries[key]
	delete(m.entries, key)
	n := len(m.entries)
	m.mu.Unlock()

	if ok {
		m.recordEviction(1)
	}
	m.stats.mu.Lock()
	m.stats.TotalKeys = int64(n)
	m.stats.mu.Unlock()
	return nil
}

// DeletePrefix removes every key starting with prefix.
func (m *Memory) DeletePrefix(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	removed := 0
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
			removed++
		}
	}
	n := len(m.entries)
	m.mu.Unlock()

	m.recordEviction(int64(removed))
	m.stats.mu.Lock()
	m.stats.TotalKeys = int64(n)
	m.stats.mu.Unlock()
	return removed, nil
}

// Clear removes all entries.
func (m *Memory) Clear() {
	m.mu.Lock()
	evicted := int64(len(m.entries))
	m.entries = make(map[string]entry)
	m.mu.Unlock()

	m.stats.mu.Lock()
	m.stats.Evictions += evicted
	m.stats.TotalKeys = 0
	m.stats.mu.Unlock()
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close stops the cleanup loop. It is safe to call more than once.
func (m *Memory) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}

// GetStats returns a snapshot of the counters.
func (m *Memory) GetStats() Stats {
	m.stats.mu.RLock()
	defer m.stats.mu.RUnlock()

	return Stats{
		Hits:        m.stats.Hits,
		Misses:      m.stats.Misses,
		Evictions:   m.stats.Evictions,
		TotalKeys:   m.stats.TotalKeys,
		LastCleanup: m.stats.LastCleanup,
	}
}

// HitRate returns the hit rate as a percentage.
func (m *Memory) HitRate() float64 {
	s := m.GetStats()
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total) * 100.0
}

func (m *Memory) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

// cleanup removes all expired entries.
func (m *Memory) cleanup() {
	now := time.Now()

	m.mu.Lock()
	evicted := int64(0)
	for key, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, key)
			evicted++
		}
	}
	n := len(m.entries)
	m.mu.Unlock()

	m.stats.mu.Lock()
	m.stats.Evictions += evicted
	m.stats.TotalKeys = int64(n)
	m.stats.LastCleanup = now
	m.stats.mu.Unlock()
}

func (m *Memory) recordHit() {
	m.stats.mu.Lock()
	m.stats.Hits++
	m.stats.mu.Unlock()
}

func (m *Memory) recordMiss() {
	m.stats.mu.Lock()
	m.stats.Misses++
	m.stats.mu.Unlock()
}

func (m *Memory) recordEviction(n int64) {
	if n == 0 {
		return
	}
	m.stats.mu.Lock()
	m.stats.Evictions += n
	m.stats.mu.Unlock()
}
