// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// memoryEntry is one cached value with its expiry.
type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// MemoryCacheOptions configures the in-process cache.
type MemoryCacheOptions struct {
	DefaultTTL      time.Duration
	MaxSize         int           // entry cap, 0 = unlimited
	CleanupInterval time.Duration // expired-entry sweep period, 0 = no sweeps
}

// MemoryCache is an in-process Cacher used when Redis is not configured.
// Values are copied on the way in and out, so callers can't corrupt cached
// payloads.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	bytes   int64
	closed  bool

	defaultTTL time.Duration
	maxSize    int
	stopSweep  chan struct{}

	stats struct {
		sync.Mutex
		hits, misses, sets int64
	}
}

// NewMemoryCache creates a memory cache and, when a cleanup interval is
// set, starts its background sweep goroutine.
func NewMemoryCache(opts MemoryCacheOptions) *MemoryCache {
	c := &MemoryCache{
		entries:    make(map[string]*memoryEntry),
		defaultTTL: opts.DefaultTTL,
		maxSize:    opts.MaxSize,
		stopSweep:  make(chan struct{}),
	}
	if opts.CleanupInterval > 0 {
		go c.sweepLoop(opts.CleanupInterval)
	}
	return c
}

// Get returns a copy of the cached value, or ErrCacheMiss.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrCacheClosed
	}

	entry, ok := c.entries[key]
	if ok && entry.expired(time.Now()) {
		c.remove(key)
		ok = false
	}
	if !ok {
		c.countMiss()
		return nil, ErrCacheMiss
	}

	c.countHit()
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

// Set stores a copy of value under key. A zero ttl means the default TTL.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCacheClosed
	}

	// At capacity, reclaim expired entries before inserting.
	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.sweep(time.Now())
	}

	if old, ok := c.entries[key]; ok {
		c.bytes -= int64(len(old.value))
	}
	c.entries[key] = &memoryEntry{value: stored, expiresAt: time.Now().Add(ttl)}
	c.bytes += int64(len(stored))

	c.stats.Lock()
	c.stats.sets++
	c.stats.Unlock()
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCacheClosed
	}
	c.remove(key)
	return nil
}

// DeleteByPrefix removes every key starting with prefix.
func (c *MemoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCacheClosed
	}
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.remove(key)
		}
	}
	return nil
}

// Clear drops every entry.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCacheClosed
	}
	c.entries = make(map[string]*memoryEntry)
	c.bytes = 0
	return nil
}

// Has reports whether key holds an unexpired value.
func (c *MemoryCache) Has(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false, ErrCacheClosed
	}
	entry, ok := c.entries[key]
	if ok && entry.expired(time.Now()) {
		c.remove(key)
		ok = false
	}
	return ok, nil
}

// Close stops the sweep goroutine and rejects further operations. Closing
// twice is harmless.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.stopSweep)
		c.entries = nil
	}
	return nil
}

// Stats returns hit/miss counters for the admin cache endpoint.
func (c *MemoryCache) Stats() CacheStats {
	c.stats.Lock()
	hits, misses, sets := c.stats.hits, c.stats.misses, c.stats.sets
	c.stats.Unlock()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	c.mu.RLock()
	items := len(c.entries)
	bytes := c.bytes
	c.mu.RUnlock()

	return CacheStats{
		Hits:    hits,
		Misses:  misses,
		Sets:    sets,
		Items:   items,
		HitRate: hitRate,
		Size:    bytes,
	}
}

// ResetStats zeroes the counters.
func (c *MemoryCache) ResetStats() {
	c.stats.Lock()
	c.stats.hits, c.stats.misses, c.stats.sets = 0, 0, 0
	c.stats.Unlock()
}

// remove deletes an entry under c.mu.
func (c *MemoryCache) remove(key string) {
	if entry, ok := c.entries[key]; ok {
		c.bytes -= int64(len(entry.value))
		delete(c.entries, key)
	}
}

// sweep drops expired entries under c.mu.
func (c *MemoryCache) sweep(now time.Time) {
	for key, entry := range c.entries {
		if entry.expired(now) {
			c.remove(key)
		}
	}
}

func (c *MemoryCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			if !c.closed {
				c.sweep(time.Now())
			}
			c.mu.Unlock()
		case <-c.stopSweep:
			return
		}
	}
}

func (c *MemoryCache) countHit() {
	c.stats.Lock()
	c.stats.hits++
	c.stats.Unlock()
}

func (c *MemoryCache) countMiss() {
	c.stats.Lock()
	c.stats.misses++
	c.stats.Unlock()
}

var (
	_ Cacher        = (*MemoryCache)(nil)
	_ StatsProvider = (*MemoryCache)(nil)
)
