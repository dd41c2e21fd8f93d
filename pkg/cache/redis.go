package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Redis-backed cache for server deployments where multiple
// instances share one result store. Transient network failures on reads and
// writes are retried with backoff.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// RedisOption configures a RedisCache.
type RedisOption func(*RedisCache)

// WithPrefix sets the key prefix. Defaults to "flowmaid:".
func WithPrefix(prefix string) RedisOption {
	return func(c *RedisCache) {
		c.prefix = prefix
	}
}

// NewRedisCache connects to Redis at addr.
func NewRedisCache(addr, password string, db int, opts ...RedisOption) Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisCacheFromClient(client, opts...)
}

// NewRedisCacheFromClient wraps an existing client, so callers can share a
// connection pool or point at a test server.
func NewRedisCacheFromClient(client *redis.Client, opts ...RedisOption) Cache {
	c := &RedisCache{
		client: client,
		prefix: "flowmaid:",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCache) key(key string) string {
	return c.prefix + key
}

// Get retrieves a value.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	var hit bool
	err := RetryWithBackoff(ctx, func() error {
		raw, err := c.client.Get(ctx, c.key(key)).Bytes()
		if err == redis.Nil {
			hit = false
			return nil
		}
		if err != nil {
			return Retryable(err)
		}
		data, hit = raw, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return data, hit, nil
}

// Set stores a value. A ttl of zero stores without expiration.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return RetryWithBackoff(ctx, func() error {
		if err := c.client.Set(ctx, c.key(key), data, ttl).Err(); err != nil {
			return Retryable(err)
		}
		return nil
	})
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	err := c.client.Del(ctx, c.key(key)).Err()
	if err == redis.Nil {
		return nil
	}
	return err
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ Cache = (*RedisCache)(nil)
