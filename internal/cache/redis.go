package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mediwise/carehub/pkg/logger"
)

const redisPrefix = "carehub:"

// RedisCache is a Cache backed by a shared Redis instance, letting multiple
// service replicas share settings invalidation.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the given Redis URL and pings to verify
// connectivity before returning.
func NewRedisCache(url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// NewRedisCacheWithClient wraps an existing client. Used in tests.
func NewRedisCacheWithClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.client.Get(ctx, redisPrefix+key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		logger.Warnf("[Cache] Redis get failed for %s: %v", key, err)
		return "", false
	}
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := c.client.Set(ctx, redisPrefix+key, value, ttl).Err(); err != nil {
		logger.Warnf("[Cache] Redis set failed for %s: %v", key, err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, redisPrefix+key).Err(); err != nil {
		logger.Warnf("[Cache] Redis delete failed for %s: %v", key, err)
	}
}

func (c *RedisCache) Flush(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, redisPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warnf("[Cache] Redis flush delete failed for %s: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		logger.Warnf("[Cache] Redis flush scan failed: %v", err)
	}
}
