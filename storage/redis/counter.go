package redisstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/mtihani/core/gateway"
)

// CounterStore backs the gateway counters with redis. INCR is atomic server-side,
// so the count returned is exact even under high contention on hot keys; the first
// writer of a key arms its expiry.
type CounterStore struct {
	rdb *redis.Client
}

var _ gateway.CounterStore = (*CounterStore)(nil)

func NewCounterStore(rdb *redis.Client) *CounterStore {
	return &CounterStore{rdb: rdb}
}

func (s *CounterStore) IncrementAndGet(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, errors.Wrap(err, "INCR")
	}
	if count == 1 {
		if err := s.rdb.Expire(ctx, key, window).Err(); err != nil {
			return 0, errors.Wrap(err, "EXPIRE")
		}
	}
	return count, nil
}

func (s *CounterStore) Get(ctx context.Context, key string) (int64, error) {
	count, err := s.rdb.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "GET")
	}
	return count, nil
}
