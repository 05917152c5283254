package cache

import (
	"context"
	"time"
)

// Cache holds upstream responses for their TTL so burst traffic does not
// hammer the DonutSMP API. Implementations: memory (single instance) and
// Redis (shared across instances).
type Cache interface {
	// Get retrieves a cached value. Returns ErrCacheMiss if absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value for the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value.
	Delete(ctx context.Context, key string) error

	// Close releases cache resources.
	Close() error
}

// Common cache errors
type CacheError string

func (e CacheError) Error() string { return string(e) }

const (
	// ErrCacheMiss indicates the key was not found in cache.
	ErrCacheMiss CacheError = "cache miss"
)
