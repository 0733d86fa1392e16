package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	redisstore "github.com/trezcool/mtihani/storage/redis"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCounterStoreIncrementAndGet(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := redisstore.NewCounterStore(rdb)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		count, err := store.IncrementAndGet(ctx, "rl:login:1.2.3.4:anonymous:1", time.Minute)
		assert.NoError(t, err)
		assert.Equal(t, want, count)
	}
	assert.Equal(t, time.Minute, mr.TTL("rl:login:1.2.3.4:anonymous:1"),
		"expiry armed by the first write only")

	count, err := store.Get(ctx, "rl:login:1.2.3.4:anonymous:1")
	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = store.Get(ctx, "missing")
	assert.NoError(t, err)
	assert.Zero(t, count)
}

func TestCounterStoreExpiry(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := redisstore.NewCounterStore(rdb)
	ctx := context.Background()

	_, _ = store.IncrementAndGet(ctx, "k", time.Minute)
	_, _ = store.IncrementAndGet(ctx, "k", time.Minute)

	mr.FastForward(61 * time.Second)

	count, err := store.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Zero(t, count)

	count, err = store.IncrementAndGet(ctx, "k", time.Minute)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count, "expired key restarts at 1")
}

func TestSuspicionStoreSwap(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := redisstore.NewSuspicionStore(rdb)
	ctx := context.Background()

	base := time.Unix(1_000, 0)
	last, err := store.SwapLastSubmission(ctx, "sus:k", base, 5*time.Minute)
	assert.NoError(t, err)
	assert.True(t, last.IsZero())

	next := base.Add(500 * time.Millisecond)
	last, err = store.SwapLastSubmission(ctx, "sus:k", next, 5*time.Minute)
	assert.NoError(t, err)
	assert.True(t, last.Equal(base))
	assert.Equal(t, 5*time.Minute, mr.TTL("sus:k"))
}

func TestSuspicionStoreExpiry(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := redisstore.NewSuspicionStore(rdb)
	ctx := context.Background()

	base := time.Unix(1_000, 0)
	_, _ = store.SwapLastSubmission(ctx, "sus:k", base, 5*time.Minute)

	mr.FastForward(5*time.Minute + time.Second)

	last, err := store.SwapLastSubmission(ctx, "sus:k", base.Add(10*time.Minute), 5*time.Minute)
	assert.NoError(t, err)
	assert.True(t, last.IsZero(), "expired timestamp must not resurface")
}
