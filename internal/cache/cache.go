// Package cache holds the small key/value stores used for read-through
// caching of catalog lookups.
package cache

import (
	"context"
	"time"
)

type Store interface {
	// Get reports false when the key is missing or expired.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key. A zero ttl never expires.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
