package dedup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyStoreStub struct {
	seen map[string]bool
	err  error
	ttl  time.Duration
}

func (s *keyStoreStub) SetNX(_ context.Context, key string, _ interface{}, expiration time.Duration) *redis.BoolCmd {
	s.ttl = expiration
	if s.err != nil {
		return redis.NewBoolResult(false, s.err)
	}
	if s.seen[key] {
		return redis.NewBoolResult(false, nil)
	}
	s.seen[key] = true
	return redis.NewBoolResult(true, nil)
}

func (s *keyStoreStub) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if s.err != nil {
		return redis.NewIntResult(0, s.err)
	}
	var n int64
	for _, key := range keys {
		if s.seen[key] {
			delete(s.seen, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisGuardAcquireOnce(t *testing.T) {
	client := &keyStoreStub{seen: map[string]bool{}}
	guard := NewRedisGuard(client, 0)

	fresh, err := guard.Acquire(context.Background(), "wd:1")
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = guard.Acquire(context.Background(), "wd:1")
	require.NoError(t, err)
	assert.False(t, fresh)

	fresh, err = guard.Acquire(context.Background(), "wd:2")
	require.NoError(t, err)
	assert.True(t, fresh)

	assert.True(t, client.seen[keyPrefix+"wd:1"])
	assert.Equal(t, DefaultTTL, client.ttl)
}

func TestRedisGuardReleaseFreesKey(t *testing.T) {
	client := &keyStoreStub{seen: map[string]bool{}}
	guard := NewRedisGuard(client, time.Minute)
	ctx := context.Background()

	fresh, err := guard.Acquire(ctx, "wd:1")
	require.NoError(t, err)
	require.True(t, fresh)

	require.NoError(t, guard.Release(ctx, "wd:1"))
	assert.False(t, client.seen[keyPrefix+"wd:1"])

	fresh, err = guard.Acquire(ctx, "wd:1")
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestRedisGuardPropagatesErrors(t *testing.T) {
	guard := NewRedisGuard(&keyStoreStub{err: errors.New("connection refused")}, time.Minute)

	_, err := guard.Acquire(context.Background(), "wd:1")
	assert.ErrorContains(t, err, "connection refused")

	err = guard.Release(context.Background(), "wd:1")
	assert.ErrorContains(t, err, "connection refused")
}

func TestNewRedisClientRejectsBadURL(t *testing.T) {
	_, err := newRedisClient("not-a-url")
	assert.Error(t, err)

	client, err := newRedisClient("redis://localhost:6379/0")
	require.NoError(t, err)
	assert.NoError(t, client.Close())
}
