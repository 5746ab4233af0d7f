// Package cache is an in-memory key/value store bounded by entry count and
// per-entry time-to-live. It is safe for concurrent use.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Store holds values of type V. When full, expired entries are dropped
// first and then the least recently used entry is evicted. Reads never
// extend an entry's lifetime.
type Store[V any] struct {
	items      *ttlcache.Cache[string, V]
	maxEntries int

	hits, misses, evictions, expirations atomic.Uint64

	mu          sync.Mutex
	lastCleanup time.Time
}

// New creates a Store. Non-positive maxEntries or ttl fall back to the defaults.
func New[V any](maxEntries int, ttl time.Duration) *Store[V] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store[V]{
		items: ttlcache.New[string, V](
			ttlcache.WithTTL[string, V](ttl),
			ttlcache.WithCapacity[string, V](uint64(maxEntries)),
			ttlcache.WithDisableTouchOnHit[string, V](),
		),
		maxEntries: maxEntries,
	}
	s.items.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, _ *ttlcache.Item[string, V]) {
		switch reason {
		case ttlcache.EvictionReasonCapacityReached:
			s.evictions.Add(1)
		case ttlcache.EvictionReasonExpired:
			s.expirations.Add(1)
		}
	})
	return s
}

// Get returns the value stored under key if present and not expired.
func (s *Store[V]) Get(key string) (V, bool) {
	v, ok := s.Peek(key)
	if ok {
		s.hits.Add(1)
	} else {
		s.misses.Add(1)
	}
	return v, ok
}

// Peek is Get without touching the hit/miss counters.
func (s *Store[V]) Peek(key string) (V, bool) {
	item := s.items.Get(key)
	if item == nil {
		var zero V
		return zero, false
	}
	return item.Value(), true
}

// Has reports whether key holds a live value. It does not count as a hit or
// miss and does not refresh recency.
func (s *Store[V]) Has(key string) bool {
	return s.items.Has(key)
}

// Set stores value under key for ttl, or the store's default ttl when ttl <= 0.
func (s *Store[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = ttlcache.DefaultTTL
	}
	// expired entries still hold capacity until swept
	if !s.items.Has(key) {
		s.items.DeleteExpired()
	}
	s.items.Set(key, value, ttl)
}

// Len returns the number of live entries.
func (s *Store[V]) Len() int {
	return s.items.Len()
}

// Stats returns counters and occupancy. Eviction and expiration counts are
// recorded asynchronously and may trail the store by a moment.
func (s *Store[V]) Stats() Stats {
	hits, misses := s.hits.Load(), s.misses.Load()
	var ratio float64
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total) * 100
	}

	s.mu.Lock()
	lastCleanup := s.lastCleanup
	s.mu.Unlock()

	return Stats{
		EntryCount:      s.items.Len(),
		MaxEntries:      s.maxEntries,
		Hits:            hits,
		Misses:          misses,
		Evictions:       s.evictions.Load(),
		Expirations:     s.expirations.Load(),
		HitRatio:        ratio,
		LastCleanupTime: lastCleanup,
	}
}

// Run sweeps expired entries every interval until ctx is done.
func (s *Store[V]) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = CleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

// Cleanup removes every expired entry.
func (s *Store[V]) Cleanup() {
	s.items.DeleteExpired()

	s.mu.Lock()
	s.lastCleanup = time.Now()
	s.mu.Unlock()
}
