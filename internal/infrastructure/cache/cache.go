// Package cache provides the byte-oriented stores used to memoize rendered
// dashboards. Keys are namespaced by the caller; stores never interpret values.
package cache

import (
	"context"
	"time"
)

// Store is a TTL key/value cache
type Store interface {
	// Get returns the cached value and true, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for ttl. A non-positive ttl stores nothing.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}
