package cache

import (
	"fmt"
	"sync"
)

// SyncCache is a Cache guarded by a single mutex per operation, so an
// eviction in the store and the matching unbind in the index are never
// observed apart.
//
// Eviction hooks are queued while the lock is held and run after it is
// released, before Set or Resize returns. A hook may call back into the
// SyncCache.
type SyncCache[O, K comparable, V any] struct {
	mu      sync.Mutex
	inner   *Cache[O, K, V]
	onEvict EvictFunc[O, K, V]
	pending []evicted[O, K, V]
}

type evicted[O, K comparable, V any] struct {
	token Token
	entry Entry[O, K, V]
}

// NewSync constructs a SyncCache from cfg.
func NewSync[O, K comparable, V any](cfg Config[O, K, V]) (*SyncCache[O, K, V], error) {
	if cfg.OnEvict == nil {
		return nil, fmt.Errorf("%w: OnEvict is required", ErrConfiguration)
	}

	s := &SyncCache[O, K, V]{onEvict: cfg.OnEvict}
	cfg.OnEvict = s.queue

	inner, err := New(cfg)
	if err != nil {
		return nil, err
	}
	s.inner = inner

	return s, nil
}

// Get returns the value last stored for (owner, key).
func (s *SyncCache[O, K, V]) Get(owner O, key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inner.Get(owner, key)
}

// Set stores value for (owner, key).
func (s *SyncCache[O, K, V]) Set(owner O, key K, value V) error {
	s.mu.Lock()
	err := s.inner.Set(owner, key, value)
	drained := s.drain()
	s.mu.Unlock()

	s.notify(drained)
	return err
}

// Resize changes the capacity, evicting entries if needed.
func (s *SyncCache[O, K, V]) Resize(capacity int64) error {
	s.mu.Lock()
	err := s.inner.Resize(capacity)
	drained := s.drain()
	s.mu.Unlock()

	s.notify(drained)
	return err
}

// Len returns the number of stored entries.
func (s *SyncCache[O, K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inner.Len()
}

// Size returns the current total weight.
func (s *SyncCache[O, K, V]) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inner.Size()
}

// Stats returns cache statistics.
func (s *SyncCache[O, K, V]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inner.Stats()
}

// queue must be called with the lock held.
func (s *SyncCache[O, K, V]) queue(token Token, entry Entry[O, K, V]) {
	s.pending = append(s.pending, evicted[O, K, V]{token: token, entry: entry})
}

// drain must be called with the lock held.
func (s *SyncCache[O, K, V]) drain() []evicted[O, K, V] {
	drained := s.pending
	s.pending = nil
	return drained
}

func (s *SyncCache[O, K, V]) notify(drained []evicted[O, K, V]) {
	for _, e := range drained {
		s.onEvict(e.token, e.entry)
	}
}
