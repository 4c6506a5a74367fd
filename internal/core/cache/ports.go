package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// ErrCorrupt is returned by GetJSON when the stored bytes do not decode.
var ErrCorrupt = errors.New("cache entry corrupt")

// Cache is the explicitly injected cache service. One instance is built at
// process start and handed to every component that caches.
type Cache interface {
	// Get returns ErrMiss (wrapped) when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A ttl of 0 never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Invalidate(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// GetJSON reads key and decodes it into a T.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, error) {
	var v T
	data, err := c.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return v, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON[T any](ctx context.Context, c Cache, key string, v T, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return c.Set(ctx, key, data, ttl)
}
