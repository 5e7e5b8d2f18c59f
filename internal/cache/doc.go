// Package cache keeps generated responses in memory, keyed by the normalized
// request path. Entries use a sliding expiry: every hit pushes the deadline
// out by one lifetime, so files that keep being requested stay warm while
// idle ones age out. A background sweep removes expired entries; lookups also
// reject expired entries themselves, so the sweep is housekeeping only.
// Dispatchers depend on this package through Save/Lookup and never see the
// backing map.
package cache
