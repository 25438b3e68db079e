package cache

import (
	"container/list"
	"fmt"

	"github.com/charmbracelet/log"
)

// StoreConfig configures a Store.
type StoreConfig[E any] struct {
	// Capacity is the maximum total weight. Zero means DefaultCapacity.
	Capacity int64

	// OnEvict is required. It runs synchronously for every evicted entry.
	OnEvict func(token Token, entry E)

	// Weigh computes the weight of an entry. Required.
	Weigh func(entry E) (int64, error)

	Logger *log.Logger
}

// Store is a token-keyed cache that evicts least recently used entries once
// their total weight exceeds its capacity.
//
// Store is not safe for concurrent use.
type Store[E any] struct {
	capacity int64 // Maximum weight
	size     int64 // Current weight

	// LRU implementation: front is most recently used
	items    map[Token]*list.Element
	eviction *list.List

	onEvict  func(Token, E)
	weigh    func(E) (int64, error)
	evicting bool

	evictions int64
	logger    *log.Logger
}

// storeEntry represents an entry in the store
type storeEntry[E any] struct {
	token  Token
	entry  E
	weight int64
}

// NewStore creates a store from cfg.
func NewStore[E any](cfg StoreConfig[E]) (*Store[E], error) {
	capacity, err := resolveCapacity(cfg.Capacity)
	if err != nil {
		return nil, err
	}
	if cfg.OnEvict == nil {
		return nil, fmt.Errorf("%w: eviction hook is required", ErrConfiguration)
	}
	if cfg.Weigh == nil {
		return nil, fmt.Errorf("%w: weigher is required", ErrConfiguration)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("cache")
	}

	return &Store[E]{
		capacity: capacity,
		items:    make(map[Token]*list.Element),
		eviction: list.New(),
		onEvict:  cfg.OnEvict,
		weigh:    cfg.Weigh,
		logger:   logger,
	}, nil
}

// Put stores entry under token and marks it most recently used, then evicts
// from the least recently used end until the store fits its capacity.
//
// An entry heavier than the whole capacity is never stored; it goes straight
// to the eviction hook and the rest of the store is left alone.
func (s *Store[E]) Put(token Token, entry E) error {
	if s.evicting {
		return ErrReentrant
	}

	weight, err := s.weigh(entry)
	if err != nil {
		return err
	}

	if weight > s.capacity {
		s.logger.Debug("entry exceeds capacity", "token", token, "weight", weight, "capacity", s.capacity)
		if elem, ok := s.items[token]; ok {
			s.evict(elem)
		}
		s.dispose(token, entry)
		return nil
	}

	if elem, ok := s.items[token]; ok {
		s.eviction.MoveToFront(elem)
		se := elem.Value.(*storeEntry[E])
		s.size += weight - se.weight
		se.entry = entry
		se.weight = weight
	} else {
		elem := s.eviction.PushFront(&storeEntry[E]{token: token, entry: entry, weight: weight})
		s.items[token] = elem
		s.size += weight
	}

	s.trim()
	return nil
}

// Get returns the entry for token and marks it most recently used.
func (s *Store[E]) Get(token Token) (E, bool) {
	elem, ok := s.items[token]
	if !ok {
		var zero E
		return zero, false
	}

	s.eviction.MoveToFront(elem)
	return elem.Value.(*storeEntry[E]).entry, true
}

// Peek returns the entry for token without updating recency.
func (s *Store[E]) Peek(token Token) (E, bool) {
	elem, ok := s.items[token]
	if !ok {
		var zero E
		return zero, false
	}
	return elem.Value.(*storeEntry[E]).entry, true
}

// Contains checks if a token is stored without updating recency.
func (s *Store[E]) Contains(token Token) bool {
	_, ok := s.items[token]
	return ok
}

// Remove drops token without calling the eviction hook.
func (s *Store[E]) Remove(token Token) (E, bool) {
	elem, ok := s.items[token]
	if !ok {
		var zero E
		return zero, false
	}
	se := s.removeElement(elem)
	return se.entry, true
}

// Resize changes the capacity, evicting entries if the store no longer fits.
func (s *Store[E]) Resize(capacity int64) error {
	if s.evicting {
		return ErrReentrant
	}
	capacity, err := resolveCapacity(capacity)
	if err != nil {
		return err
	}

	s.capacity = capacity
	s.trim()
	return nil
}

// Size returns the current total weight.
func (s *Store[E]) Size() int64 {
	return s.size
}

// Len returns the number of stored entries.
func (s *Store[E]) Len() int {
	return len(s.items)
}

// Capacity returns the maximum total weight.
func (s *Store[E]) Capacity() int64 {
	return s.capacity
}

// Evictions returns how many entries have been handed to the eviction hook.
func (s *Store[E]) Evictions() int64 {
	return s.evictions
}

// Evicting reports whether an eviction hook is currently running.
func (s *Store[E]) Evicting() bool {
	return s.evicting
}

// trim evicts from the back until the store fits.
func (s *Store[E]) trim() {
	for s.size > s.capacity && s.eviction.Len() > 0 {
		s.evict(s.eviction.Back())
	}
}

func (s *Store[E]) evict(elem *list.Element) {
	se := s.removeElement(elem)
	s.logger.Debug("evicted", "token", se.token, "weight", se.weight, "size", s.size)
	s.dispose(se.token, se.entry)
}

func (s *Store[E]) dispose(token Token, entry E) {
	s.evictions++
	s.evicting = true
	defer func() { s.evicting = false }()
	s.onEvict(token, entry)
}

func (s *Store[E]) removeElement(elem *list.Element) *storeEntry[E] {
	s.eviction.Remove(elem)
	se := elem.Value.(*storeEntry[E])
	delete(s.items, se.token)
	s.size -= se.weight
	return se
}
