package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisNamespace prefixes every key written by RedisCache.
const RedisNamespace = "keyplan:"

// RedisCache stores entries in Redis with native expiry. Network failures
// are retried with backoff and surface as ErrUnavailable.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the server named by url (redis://host:port/db)
// and verifies it with a PING.
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 2 * time.Second
	opts.MaxRetries = -1 // retries are ours

	c := &RedisCache{client: redis.NewClient(opts)}
	err = RetryWithBackoff(ctx, func() error {
		return c.transient(c.client.Ping(ctx).Err())
	})
	if err != nil {
		c.client.Close()
		return nil, err
	}
	return c, nil
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	hit := true
	err := RetryWithBackoff(ctx, func() error {
		b, err := c.client.Get(ctx, RedisNamespace+key).Bytes()
		if errors.Is(err, redis.Nil) {
			hit = false
			return nil
		}
		data = b
		return c.transient(err)
	})
	if err != nil {
		return nil, false, err
	}
	return data, hit, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return RetryWithBackoff(ctx, func() error {
		return c.transient(c.client.Set(ctx, RedisNamespace+key, data, ttl).Err())
	})
}

// Delete implements Cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return RetryWithBackoff(ctx, func() error {
		return c.transient(c.client.Del(ctx, RedisNamespace+key).Err())
	})
}

// Clear deletes every key under RedisNamespace.
func (c *RedisCache) Clear(ctx context.Context) (int, error) {
	var (
		cursor uint64
		n      int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, RedisNamespace+"*", 256).Result()
		if err != nil {
			return n, c.transient(err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return n, c.transient(err)
			}
			n += len(keys)
		}
		if cursor = next; cursor == 0 {
			return n, nil
		}
	}
}

// Close implements Cache.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// transient classifies a client error. Context errors pass through untouched;
// everything else is treated as a connectivity problem.
func (c *RedisCache) transient(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return Retryable(fmt.Errorf("%w: %v", ErrUnavailable, err))
}

var (
	_ Cache   = (*RedisCache)(nil)
	_ Clearer = (*RedisCache)(nil)
)
