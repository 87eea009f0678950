// Package app is leaddesk's composition root.
//
// Run loads the config, opens the JSON log file and the SQLite state
// database, builds the CRM client, the workspace with its events bus and list
// fetchers, and hands them to the Bubble Tea UI. It blocks until the user
// quits or ctx is cancelled.
//
// # Refresh
//
// A Refresher runs beside the UI. It never fetches; it sends Requests the UI
// turns into fetches for whatever it is showing:
//
//   - every refresh interval, a forced background refresh
//   - on a focus event, a cached background refresh
//   - when the API comes back online, a forced background refresh
//   - after a cache invalidation, a foreground refresh of that list
//
// Focus and online triggers share one token bucket, so at most one fires per
// min_gap; invalidations wait for a token instead of being dropped.
//
// While reads fail the interval doubles per consecutive failure, capped at ten
// minutes. Failed reads are never retried sooner than the regular interval.
//
// # Metrics
//
// Cache and fetcher collectors register on a private Prometheus registry.
// Setting [metrics] listen serves it on /metrics.
package app
