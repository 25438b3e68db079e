// Package replay runs recorded cache traces against a cache.Cache.
//
// A trace holds one operation per line:
//
//	# comment
//	set <owner> <key> <value>
//	get <owner> <key>
//	resize <capacity>
//
// Values run to the end of the line; a value starting with a double quote is
// unquoted with Go syntax. Capacities accept the forms cache.ParseCapacity
// does, such as 4096 or 64KiB. Each owner name maps to its own identity, so
// two owners never share keys.
package replay
