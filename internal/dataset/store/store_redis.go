package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bizverify/pkg/platform/sentinel"
)

const redisKeyPrefix = "bizverify:dataset:"

// RedisCache shares fetched exports between server replicas. Expiry is left
// to Redis via the key TTL.
type RedisCache struct {
	client   redis.Cmdable
	cacheTTL time.Duration
}

// NewRedisCache creates a Redis-backed export cache.
func NewRedisCache(client redis.Cmdable, cacheTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, cacheTTL: cacheTTL}
}

func (c *RedisCache) Save(ctx context.Context, key string, body []byte) error {
	if err := c.client.Set(ctx, redisKeyPrefix+key, body, c.cacheTTL).Err(); err != nil {
		return fmt.Errorf("save export cache: %w", err)
	}
	return nil
}

// Find returns sentinel.ErrNotFound when the key is absent or expired.
func (c *RedisCache) Find(ctx context.Context, key string) ([]byte, error) {
	body, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find export cache: %w", err)
	}
	return body, nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("delete export cache: %w", err)
	}
	return nil
}
