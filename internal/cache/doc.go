// Package cache provides a bounded-memory memoization cache keyed by an owner
// identity and a content key.
//
// Entries live in a token-keyed LRU store whose capacity is measured in
// weight (len(value) + 2*len(key)). A secondary index maps (owner, key) to the
// token of the live entry and is pruned from the store's eviction hook.
// Overwriting a pair leaves the superseded entry resident until it is evicted,
// unless Config.ReclaimOverwrites is set.
package cache
