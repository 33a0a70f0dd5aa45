package cache

import (
	"context"
	"time"
)

// Scoped prefixes every key before handing it to the wrapped cache.
//
//	shared, _ := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: "cache:6379"})
//	images := cache.NewScoped(shared, "lucidpack:")
type Scoped struct {
	inner  Cache
	prefix string
}

// NewScoped wraps inner. A nil inner is replaced by a [NullCache].
func NewScoped(inner Cache, prefix string) Cache {
	if inner == nil {
		inner = NewNullCache()
	}
	return &Scoped{inner: inner, prefix: prefix}
}

func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close closes the wrapped cache.
func (s *Scoped) Close() error {
	return s.inner.Close()
}

var _ Cache = (*Scoped)(nil)
