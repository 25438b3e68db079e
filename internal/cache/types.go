package cache

import (
	"errors"
	"fmt"
	"reflect"
)

// Common errors for cache operations
var (
	// ErrConfiguration is returned when a cache is built with a missing
	// eviction hook or a non-positive capacity.
	ErrConfiguration = errors.New("invalid cache configuration")

	// ErrInvalidEntry is returned when a key or value has no measurable length.
	ErrInvalidEntry = errors.New("invalid cache entry")

	// ErrReentrant is returned when an eviction hook writes back into the
	// cache that is evicting.
	ErrReentrant = errors.New("cache write from inside an eviction hook")
)

// DefaultCapacity is used when a config leaves Capacity at zero.
const DefaultCapacity int64 = 128 * 1024 * 1024 // 128MiB

// Token identifies a single write. Tokens are minted by Cache.Set and are
// never reused.
type Token uint64

// Entry is the record held by the primary store.
type Entry[O, K comparable, V any] struct {
	Owner O
	Key   K
	Value V
}

// EvictFunc is called once for every entry that leaves the store through
// eviction.
type EvictFunc[O, K comparable, V any] func(token Token, entry Entry[O, K, V])

// Lengther is implemented by keys and values that are not strings or byte
// slices but still have a byte length.
type Lengther interface {
	Len() int
}

// Stats holds cache metrics
type Stats struct {
	// Configuration
	Capacity int64 // Maximum weight

	// Current state
	Size   int64 // Current weight
	Items  int   // Entries in the store, orphans included
	Owners int   // Owners with at least one live key

	// Performance metrics
	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64 // hits / (hits + misses)
}

// measure returns the length of a string-like value. A nil pointer Lengther
// has no length.
func measure(v any) (int64, bool) {
	switch t := v.(type) {
	case string:
		return int64(len(t)), true
	case []byte:
		return int64(len(t)), true
	case []rune:
		return int64(len(t)), true
	case Lengther:
		if rv := reflect.ValueOf(t); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return 0, false
		}
		return int64(t.Len()), true
	default:
		return 0, false
	}
}

// Weigh returns len(value) + 2*len(key) for an entry.
func Weigh[O, K comparable, V any](e Entry[O, K, V]) (int64, error) {
	v, ok := measure(any(e.Value))
	if !ok {
		return 0, fmt.Errorf("%w: value of type %T has no length", ErrInvalidEntry, e.Value)
	}
	k, ok := measure(any(e.Key))
	if !ok {
		return 0, fmt.Errorf("%w: key of type %T has no length", ErrInvalidEntry, e.Key)
	}
	return v + 2*k, nil
}

func resolveCapacity(capacity int64) (int64, error) {
	switch {
	case capacity == 0:
		return DefaultCapacity, nil
	case capacity < 0:
		return 0, fmt.Errorf("%w: capacity must be positive, got %d", ErrConfiguration, capacity)
	default:
		return capacity, nil
	}
}
