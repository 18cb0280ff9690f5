// Package cache is a namespaced key/value cache with TTLs and automatic
// fallback.
//
// Each namespace (predictions, features, models, analysis by default) owns a
// key prefix, a default TTL and a bounded in-process fallback store. Reads and
// writes go to the primary Backend (SQLiteBackend in production); when the
// primary returns an error the same operation is served by the namespace
// fallback instead and the failure is counted. Callers never see backend
// errors: Set reports false, Get reports a miss.
//
// Writes made while the primary is down live only in the fallback, so after
// recovery they are invisible until rewritten. Read-after-write holds only
// within one tier.
package cache
