package cache

import (
	"errors"
	"testing"
)

type recorder struct {
	tokens  []Token
	entries []string
}

func (r *recorder) hook(token Token, entry string) {
	r.tokens = append(r.tokens, token)
	r.entries = append(r.entries, entry)
}

func weighString(s string) (int64, error) {
	return int64(len(s)), nil
}

func newTestStore(t *testing.T, capacity int64) (*Store[string], *recorder) {
	t.Helper()
	rec := &recorder{}
	s, err := NewStore(StoreConfig[string]{
		Capacity: capacity,
		OnEvict:  rec.hook,
		Weigh:    weighString,
	})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return s, rec
}

func TestStore_BasicOperations(t *testing.T) {
	s, rec := newTestStore(t, 1024)

	if err := s.Put(1, "test-value"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := s.Get(1)
	if !ok {
		t.Fatal("Get failed: token not found")
	}
	if got != "test-value" {
		t.Errorf("Retrieved value mismatch: got %s, want %s", got, "test-value")
	}

	if s.Size() != int64(len("test-value")) {
		t.Errorf("Size mismatch: got %d, want %d", s.Size(), len("test-value"))
	}

	if _, ok := s.Get(2); ok {
		t.Error("Get returned a value for an unknown token")
	}

	if len(rec.tokens) != 0 {
		t.Errorf("unexpected evictions: %v", rec.tokens)
	}
}

func TestStore_DefaultCapacity(t *testing.T) {
	s, _ := newTestStore(t, 0)
	if s.Capacity() != DefaultCapacity {
		t.Errorf("Capacity = %d, want %d", s.Capacity(), DefaultCapacity)
	}
}

func TestStore_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  StoreConfig[string]
	}{
		{"negative capacity", StoreConfig[string]{Capacity: -1, OnEvict: func(Token, string) {}, Weigh: weighString}},
		{"missing hook", StoreConfig[string]{Capacity: 10, Weigh: weighString}},
		{"missing weigher", StoreConfig[string]{Capacity: 10, OnEvict: func(Token, string) {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewStore(tt.cfg); !errors.Is(err, ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestStore_LRUEviction(t *testing.T) {
	s, rec := newTestStore(t, 100)

	// Five 20-byte entries fill the store exactly
	for i := Token(1); i <= 5; i++ {
		if err := s.Put(i, string(make([]byte, 20))); err != nil {
			t.Fatalf("Put failed for token %d: %v", i, err)
		}
	}

	// Touch 1 and 2 so 3 becomes least recently used
	s.Get(1)
	s.Get(2)

	if err := s.Put(6, string(make([]byte, 30))); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// 30 bytes over: 3 and 4 go, in that order
	want := []Token{3, 4}
	if len(rec.tokens) != len(want) {
		t.Fatalf("evicted %v, want %v", rec.tokens, want)
	}
	for i := range want {
		if rec.tokens[i] != want[i] {
			t.Errorf("eviction %d: got token %d, want %d", i, rec.tokens[i], want[i])
		}
	}

	for _, tok := range []Token{1, 2, 5, 6} {
		if !s.Contains(tok) {
			t.Errorf("token %d should not have been evicted", tok)
		}
	}
	if s.Size() > s.Capacity() {
		t.Errorf("size %d exceeds capacity %d", s.Size(), s.Capacity())
	}
}

func TestStore_PeekDoesNotPromote(t *testing.T) {
	s, rec := newTestStore(t, 10)

	_ = s.Put(1, "aaaaa")
	_ = s.Put(2, "bbbbb")
	s.Peek(1)
	_ = s.Put(3, "c")

	if len(rec.tokens) != 1 || rec.tokens[0] != 1 {
		t.Errorf("expected token 1 evicted, got %v", rec.tokens)
	}
}

func TestStore_OverwriteToken(t *testing.T) {
	s, _ := newTestStore(t, 100)

	_ = s.Put(1, "original")
	_ = s.Put(1, "updated-value")

	got, ok := s.Get(1)
	if !ok || got != "updated-value" {
		t.Errorf("Get = %q, %v; want updated-value", got, ok)
	}
	if s.Size() != int64(len("updated-value")) {
		t.Errorf("Size = %d, want %d", s.Size(), len("updated-value"))
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestStore_EntryLargerThanCapacity(t *testing.T) {
	s, rec := newTestStore(t, 10)

	_ = s.Put(1, "abc")
	if err := s.Put(2, "this is far too large"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if s.Contains(2) {
		t.Error("oversized entry should not be stored")
	}
	if !s.Contains(1) {
		t.Error("existing entry should survive an oversized put")
	}
	if len(rec.tokens) != 1 || rec.tokens[0] != 2 {
		t.Errorf("expected oversized token to be disposed, got %v", rec.tokens)
	}
}

func TestStore_InvalidEntry(t *testing.T) {
	s, err := NewStore(StoreConfig[Entry[string, string, int]]{
		Capacity: 100,
		OnEvict:  func(Token, Entry[string, string, int]) {},
		Weigh:    Weigh[string, string, int],
	})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	err = s.Put(1, Entry[string, string, int]{Owner: "o", Key: "k", Value: 42})
	if !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry, got %v", err)
	}
	if s.Len() != 0 || s.Size() != 0 {
		t.Errorf("failed Put changed the store: len=%d size=%d", s.Len(), s.Size())
	}
}

func TestStore_ReentrantPut(t *testing.T) {
	var s *Store[string]
	var reentrantErr error

	s, err := NewStore(StoreConfig[string]{
		Capacity: 4,
		OnEvict: func(Token, string) {
			reentrantErr = s.Put(99, "x")
		},
		Weigh: weighString,
	})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	_ = s.Put(1, "aaaa")
	_ = s.Put(2, "bbbb")

	if !errors.Is(reentrantErr, ErrReentrant) {
		t.Errorf("expected ErrReentrant from hook, got %v", reentrantErr)
	}
	if s.Contains(99) {
		t.Error("re-entrant write should not be stored")
	}
	if s.Evicting() {
		t.Error("evicting flag should be cleared after the hook returns")
	}
}

func TestStore_Resize(t *testing.T) {
	s, rec := newTestStore(t, 100)

	for i := Token(1); i <= 4; i++ {
		_ = s.Put(i, string(make([]byte, 10)))
	}

	if err := s.Resize(25); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if s.Size() != 20 {
		t.Errorf("Size after resize = %d, want 20", s.Size())
	}
	if len(rec.tokens) != 2 || rec.tokens[0] != 1 || rec.tokens[1] != 2 {
		t.Errorf("evicted %v, want [1 2]", rec.tokens)
	}

	if err := s.Resize(-5); !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestStore_RemoveSkipsHook(t *testing.T) {
	s, rec := newTestStore(t, 100)

	_ = s.Put(1, "abc")
	got, ok := s.Remove(1)
	if !ok || got != "abc" {
		t.Errorf("Remove = %q, %v", got, ok)
	}
	if s.Size() != 0 {
		t.Errorf("Size = %d, want 0", s.Size())
	}
	if len(rec.tokens) != 0 {
		t.Errorf("Remove should not call the hook, got %v", rec.tokens)
	}
	if s.Evictions() != 0 {
		t.Errorf("Evictions = %d, want 0", s.Evictions())
	}
}
