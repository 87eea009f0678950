// Package fetcher composes a cache.Store, an in-flight request deduplicator
// and a caller-supplied fetch function into a stateful fetcher that list views
// read from.
//
// # Request flow
//
//	Fetch(params)
//	  ├─ identical params already in flight? join that call (no new request)
//	  ├─ not forced and cache fresh?         update state, return cached value
//	  └─ otherwise                           mark loading, call fetch,
//	                                         compare with held data,
//	                                         write cache + state unless equal
//
// # Ordering
//
// Every call that reaches the cache or the network takes a sequence number.
// State is only written by the most recently issued sequence, so a slow page-1
// response that lands after a fast page-2 response is returned to its caller
// but never replaces what the view shows.
//
// # Loading flags
//
// IsLoading and IsBackgroundLoading are derived from counters of in-flight
// requests of each kind, so overlapping requests with different parameters do
// not clear each other's indicator.
//
// # Ownership
//
// The in-flight map and the cache belong to one Fetcher. Two views that fetch
// the same logical data hold two fetchers; invalidation between them is done
// explicitly through ClearCache (leaddesk wires this to the events bus).
package fetcher
