package cache

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Config configures a Cache.
type Config[O, K comparable, V any] struct {
	// Capacity is the maximum total weight. Zero means DefaultCapacity.
	Capacity int64

	// OnEvict is required. It runs after the evicted pair has been unbound.
	OnEvict EvictFunc[O, K, V]

	// ReclaimOverwrites removes the superseded entry from the store when a
	// pair is written again. When false, the old entry stays resident and
	// counts against capacity until it is evicted.
	ReclaimOverwrites bool

	Logger *log.Logger
}

// Cache memoizes values per (owner, key) under a total weight ceiling.
//
// Writes mint a fresh token, bind it in the index and store the entry under
// it. Evictions from the store unbind the pair they belong to, so a pair whose
// entry was evicted reads as a miss.
//
// Cache is not safe for concurrent use; see SyncCache.
type Cache[O, K comparable, V any] struct {
	store   *Store[Entry[O, K, V]]
	index   *Index[O, K]
	onEvict EvictFunc[O, K, V]
	reclaim bool
	logger  *log.Logger

	next   Token
	hits   int64
	misses int64
}

// New constructs a cache from cfg.
func New[O, K comparable, V any](cfg Config[O, K, V]) (*Cache[O, K, V], error) {
	if cfg.OnEvict == nil {
		return nil, fmt.Errorf("%w: OnEvict is required", ErrConfiguration)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("cache")
	}

	c := &Cache[O, K, V]{
		index:   NewIndex[O, K](),
		onEvict: cfg.OnEvict,
		reclaim: cfg.ReclaimOverwrites,
		logger:  logger,
	}

	store, err := NewStore(StoreConfig[Entry[O, K, V]]{
		Capacity: cfg.Capacity,
		OnEvict:  c.dispose,
		Weigh:    Weigh[O, K, V],
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	c.store = store

	return c, nil
}

// NewWithCapacity is shorthand for New with only Capacity and OnEvict set.
func NewWithCapacity[O, K comparable, V any](capacity int64, onEvict EvictFunc[O, K, V]) (*Cache[O, K, V], error) {
	return New(Config[O, K, V]{Capacity: capacity, OnEvict: onEvict})
}

// Get returns the value last stored for (owner, key).
func (c *Cache[O, K, V]) Get(owner O, key K) (V, bool) {
	var zero V

	token, ok := c.index.Lookup(owner, key)
	if !ok {
		c.misses++
		return zero, false
	}

	entry, ok := c.store.Get(token)
	if !ok {
		c.misses++
		return zero, false
	}

	c.hits++
	return entry.Value, true
}

// Set stores value for (owner, key).
//
// If Set returns an error the index is left as it was before the call. Set
// must not be called from an eviction hook; doing so returns ErrReentrant.
func (c *Cache[O, K, V]) Set(owner O, key K, value V) error {
	if c.store.Evicting() {
		return ErrReentrant
	}

	c.next++
	token := c.next

	prev, replaced := c.index.Bind(owner, key, token)
	if err := c.store.Put(token, Entry[O, K, V]{Owner: owner, Key: key, Value: value}); err != nil {
		if replaced {
			c.index.Bind(owner, key, prev)
		} else {
			c.index.UnbindToken(owner, key, token)
		}
		return err
	}

	if replaced && c.reclaim {
		if _, ok := c.store.Remove(prev); ok {
			c.logger.Debug("reclaimed superseded entry", "token", prev)
		}
	}

	return nil
}

// Resize changes the capacity, evicting entries if the cache no longer fits.
func (c *Cache[O, K, V]) Resize(capacity int64) error {
	return c.store.Resize(capacity)
}

// Len returns the number of entries held in the store, orphans included.
func (c *Cache[O, K, V]) Len() int {
	return c.store.Len()
}

// Size returns the current total weight.
func (c *Cache[O, K, V]) Size() int64 {
	return c.store.Size()
}

// Stats returns cache statistics.
func (c *Cache[O, K, V]) Stats() Stats {
	stats := Stats{
		Capacity:  c.store.Capacity(),
		Size:      c.store.Size(),
		Items:     c.store.Len(),
		Owners:    c.index.Owners(),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.store.Evictions(),
	}
	if stats.Hits+stats.Misses > 0 {
		stats.HitRate = float64(stats.Hits) / float64(stats.Hits+stats.Misses)
	}
	return stats
}

// dispose is the store's eviction hook.
func (c *Cache[O, K, V]) dispose(token Token, entry Entry[O, K, V]) {
	if c.index.UnbindToken(entry.Owner, entry.Key, token) {
		c.logger.Debug("unbound evicted pair", "token", token, "owners", c.index.Owners())
	}
	c.onEvict(token, entry)
}
