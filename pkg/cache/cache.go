// Package cache provides byte caches for derived artifacts.
//
// The import pipeline re-processes the same local images every time a
// manifest is rebuilt. Decoding, resizing and re-encoding a large photo is
// far slower than reading a few hundred kilobytes back from disk, so
// processed rasters are cached under a key derived from the source bytes and
// the processing options.
//
// # Backends
//
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for teams building on CI
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// [Scoped] wraps any backend and prefixes its keys, so several tools can
// share one Redis database without colliding.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by helpers that must distinguish a miss from an
// empty value.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores opaque byte values with an optional TTL.
//
// Get reports a miss with ok=false and a nil error. Backends treat corrupt
// or expired entries as misses. A ttl of zero means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Fetch returns the cached value for key, or ErrCacheMiss.
func Fetch(ctx context.Context, c Cache, key string) ([]byte, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCacheMiss
	}
	return data, nil
}
