package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache stores values of one type under string keys.
type Cache[T any] interface {
	Get(ctx context.Context, key string) (T, bool, error)
	Set(ctx context.Context, key string, value T) error
	Delete(ctx context.Context, key string) error
}

// CacheMetrics tracks cache performance
type CacheMetrics struct {
	Hits   int64
	Misses int64
	Sets   int64
}

type counters struct {
	hits, misses, sets atomic.Int64
}

func (c *counters) snapshot() CacheMetrics {
	return CacheMetrics{Hits: c.hits.Load(), Misses: c.misses.Load(), Sets: c.sets.Load()}
}

// Memory is a process local cache with a fixed TTL.
type Memory[T any] struct {
	items   *gocache.Cache
	name    string
	logger  *zap.Logger
	metrics counters
}

// NewMemory creates a cache whose entries expire after ttl. Expired entries
// are purged every ttl/2.
func NewMemory[T any](ttl time.Duration, name string, logger *zap.Logger) *Memory[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Memory[T]{
		items:  gocache.New(ttl, ttl/2),
		name:   name,
		logger: logger,
	}
}

func (c *Memory[T]) Get(_ context.Context, key string) (T, bool, error) {
	var zero T
	v, found := c.items.Get(key)
	if !found {
		c.metrics.misses.Add(1)
		c.logger.Debug("Cache miss", zap.String("cache", c.name), zap.String("key", key))
		return zero, false, nil
	}
	value, ok := v.(T)
	if !ok {
		c.metrics.misses.Add(1)
		return zero, false, nil
	}
	c.metrics.hits.Add(1)
	c.logger.Debug("Cache hit", zap.String("cache", c.name), zap.String("key", key))
	return value, true, nil
}

func (c *Memory[T]) Set(_ context.Context, key string, value T) error {
	c.items.SetDefault(key, value)
	c.metrics.sets.Add(1)
	return nil
}

func (c *Memory[T]) Delete(_ context.Context, key string) error {
	c.items.Delete(key)
	return nil
}

// Size returns the number of items in the cache, expired ones included until
// the next purge.
func (c *Memory[T]) Size() int {
	return c.items.ItemCount()
}

// GetMetrics returns current cache metrics
func (c *Memory[T]) GetMetrics() CacheMetrics {
	return c.metrics.snapshot()
}

// Redis shares cached values between instances. Values are stored as JSON
// under prefix:key.
type Redis[T any] struct {
	client  redis.Cmdable
	prefix  string
	ttl     time.Duration
	logger  *zap.Logger
	metrics counters
}

func NewRedis[T any](client redis.Cmdable, prefix string, ttl time.Duration, logger *zap.Logger) *Redis[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis[T]{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

func (c *Redis[T]) key(key string) string {
	return c.prefix + ":" + key
}

func (c *Redis[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.metrics.misses.Add(1)
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		c.logger.Warn("Dropping undecodable cache entry", zap.String("key", c.key(key)), zap.Error(err))
		c.metrics.misses.Add(1)
		return zero, false, nil
	}
	c.metrics.hits.Add(1)
	return value, true, nil
}

func (c *Redis[T]) Set(ctx context.Context, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.key(key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	c.metrics.sets.Add(1)
	return nil
}

func (c *Redis[T]) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// GetMetrics returns current cache metrics
func (c *Redis[T]) GetMetrics() CacheMetrics {
	return c.metrics.snapshot()
}
