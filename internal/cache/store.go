// Package cache is a key-addressed store with per-entry TTL that sits in
// front of upstream fetches and multi-year aggregation.
//
// Expiry is lazy: Get treats an entry whose ExpiresAt has passed as absent
// and removes it. A Manager additionally sweeps expired entries on an
// interval between Open and Close. A nil *Store is a valid, always-missing
// cache, so every caller works unchanged with caching disabled.
package cache

import (
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"github.com/jonboulle/clockwork"
	gocache "github.com/patrickmn/go-cache"
)

// Entry is one cached value with its lifetime.
type Entry[T any] struct {
	Key       string
	Data      T
	Timestamp time.Time
	ExpiresAt time.Time
}

// Expired reports whether the entry is past its lifetime at now.
func (e Entry[T]) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Store is a typed TTL cache. Each store owns its own keyspace.
type Store[T any] struct {
	name    string
	ttl     time.Duration
	items   *gocache.Cache
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// NewStore creates a store with a default TTL and registers it with the
// manager for periodic sweeping. It returns nil, a disabled store, when the
// manager is nil or disabled.
func NewStore[T any](m *Manager, name string, ttl time.Duration) *Store[T] {
	if m == nil || !m.enabled {
		return nil
	}
	s := &Store[T]{
		name: name,
		ttl:  ttl,
		// Expiry is tracked on Entry against the injected clock, so the
		// backing cache never expires or sweeps on its own.
		items:   gocache.New(gocache.NoExpiration, 0),
		clock:   m.clock,
		metrics: m.metrics,
	}
	m.register(s)
	return s
}

// Name returns the store's name.
func (s *Store[T]) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Get returns the cached data for key. Expired entries are removed and
// reported as a miss.
func (s *Store[T]) Get(key string) (T, bool) {
	var zero T
	if s == nil {
		return zero, false
	}

	v, ok := s.items.Get(key)
	if !ok {
		s.observe("miss")
		return zero, false
	}
	e, ok := v.(Entry[T])
	if !ok {
		s.items.Delete(key)
		s.observe("miss")
		return zero, false
	}
	if e.Expired(s.clock.Now()) {
		s.items.Delete(key)
		s.observe("expired")
		return zero, false
	}
	s.observe("hit")
	return e.Data, true
}

// Set stores data under key for ttl, or for the store's default TTL when
// ttl is not positive. Concurrent writers to one key are last-write-wins.
func (s *Store[T]) Set(key string, data T, ttl time.Duration) {
	if s == nil {
		return
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	now := s.clock.Now()
	s.items.Set(key, Entry[T]{
		Key:       key,
		Data:      data,
		Timestamp: now,
		ExpiresAt: now.Add(ttl),
	}, gocache.NoExpiration)
}

// Delete removes key.
func (s *Store[T]) Delete(key string) {
	if s == nil {
		return
	}
	s.items.Delete(key)
}

// Len returns the number of entries held, including expired ones not yet
// swept.
func (s *Store[T]) Len() int {
	if s == nil {
		return 0
	}
	return s.items.ItemCount()
}

// Sweep removes every expired entry and returns how many were removed.
func (s *Store[T]) Sweep() int {
	if s == nil {
		return 0
	}
	now := s.clock.Now()
	removed := 0
	for key, item := range s.items.Items() {
		e, ok := item.Object.(Entry[T])
		if !ok || e.Expired(now) {
			s.items.Delete(key)
			removed++
		}
	}
	return removed
}

// Flush removes every entry.
func (s *Store[T]) Flush() {
	if s == nil {
		return
	}
	s.items.Flush()
}

func (s *Store[T]) observe(result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.CacheLookups.WithLabelValues(s.name, result).Inc()
}
