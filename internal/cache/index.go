package cache

// Index maps (owner, key) pairs to the token of their live entry.
//
// An owner has a sub-map only while it has at least one bound key.
type Index[O, K comparable] struct {
	owners map[O]map[K]Token
}

// NewIndex returns an empty index.
func NewIndex[O, K comparable]() *Index[O, K] {
	return &Index[O, K]{owners: make(map[O]map[K]Token)}
}

// Lookup returns the token bound to (owner, key). It never allocates a
// sub-map for an unseen owner.
func (ix *Index[O, K]) Lookup(owner O, key K) (Token, bool) {
	keys, ok := ix.owners[owner]
	if !ok {
		return 0, false
	}
	token, ok := keys[key]
	return token, ok
}

// Bind records key -> token for owner and returns the token it replaced, if
// any. The replaced token is left wherever it is stored.
func (ix *Index[O, K]) Bind(owner O, key K, token Token) (Token, bool) {
	keys, ok := ix.owners[owner]
	if !ok {
		keys = make(map[K]Token)
		ix.owners[owner] = keys
	}
	prev, replaced := keys[key]
	keys[key] = token
	return prev, replaced
}

// Unbind removes key from owner, dropping the owner once it has no keys left.
func (ix *Index[O, K]) Unbind(owner O, key K) bool {
	keys, ok := ix.owners[owner]
	if !ok {
		return false
	}
	if _, ok := keys[key]; !ok {
		return false
	}
	delete(keys, key)
	if len(keys) == 0 {
		delete(ix.owners, owner)
	}
	return true
}

// UnbindToken unbinds (owner, key) only while it still points at token.
func (ix *Index[O, K]) UnbindToken(owner O, key K, token Token) bool {
	current, ok := ix.Lookup(owner, key)
	if !ok || current != token {
		return false
	}
	return ix.Unbind(owner, key)
}

// Owners returns the number of owners with at least one bound key.
func (ix *Index[O, K]) Owners() int {
	return len(ix.owners)
}

// Keys returns the number of keys bound for owner.
func (ix *Index[O, K]) Keys(owner O) int {
	return len(ix.owners[owner])
}

// Len returns the number of bound (owner, key) pairs.
func (ix *Index[O, K]) Len() int {
	n := 0
	for _, keys := range ix.owners {
		n += len(keys)
	}
	return n
}
