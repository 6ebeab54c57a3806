package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "earnbot:callback:"

// DefaultTTL bounds how long a press blocks repeats if its release is lost.
const DefaultTTL = time.Minute

type keyStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisGuard holds callback keys in Redis with SETNX.
type RedisGuard struct {
	client keyStore
	ttl    time.Duration
}

// NewRedisGuard constructs RedisGuard. A non-positive ttl selects DefaultTTL.
func NewRedisGuard(client keyStore, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisGuard{client: client, ttl: ttl}
}

// Acquire claims key and reports whether it was free.
func (g *RedisGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, keyPrefix+key, 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire callback %s: %w", key, err)
	}
	return ok, nil
}

// Release drops key.
func (g *RedisGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release callback %s: %w", key, err)
	}
	return nil
}

func newRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}
