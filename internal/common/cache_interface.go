package common

import (
	"context"
	"time"
)

// CacheInterface is the board read cache. Values are opaque encoded payloads
// so the memory and Redis backends behave the same.
type CacheInterface interface {
	// Set stores value under key for duration
	Set(key string, value []byte, duration time.Duration)

	// Get returns the value and true if found
	Get(key string) ([]byte, bool)

	Delete(key string)

	// GetOrSet returns the cached value or stores what loader produces
	GetOrSet(key string, duration time.Duration, loader func() ([]byte, error)) ([]byte, error)

	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error

	Close() error
}
