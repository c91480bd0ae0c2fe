// Package cache persists remote API responses in SQLite so repeated builds
// can skip the network and fall back to stale data when an API is down.
package cache
