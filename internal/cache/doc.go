// Package cache is the bounded, TTL-based store that sits in front of list
// fetches.
//
// Entries are keyed by the JSON serialization of the request parameters, so
// two parameter values that marshal identically share an entry. Struct fields
// marshal in declaration order and map keys are sorted, which keeps keys
// stable for the parameter types leaddesk builds.
//
// Expiry is lazy: an entry older than the TTL is removed by the Get that finds
// it, or by ClearExpired. When the store is full, inserting a new key evicts
// the key that was inserted first (updating an existing key keeps its place).
// This is insertion-order eviction, not LRU.
//
// A Store is safe for concurrent use. Each fetcher owns its own Store; stores
// are never shared between list views.
package cache
