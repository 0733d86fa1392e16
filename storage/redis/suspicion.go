package redisstore

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/mtihani/core/gateway"
)

// SuspicionStore keeps last-submission timestamps in redis. GETSET makes the
// read-and-replace a single atomic step; timestamps travel as unix nanos.
type SuspicionStore struct {
	rdb *redis.Client
}

var _ gateway.SuspicionStore = (*SuspicionStore)(nil)

func NewSuspicionStore(rdb *redis.Client) *SuspicionStore {
	return &SuspicionStore{rdb: rdb}
}

func (s *SuspicionStore) SwapLastSubmission(ctx context.Context, key string, now time.Time, ttl time.Duration) (time.Time, error) {
	prev, err := s.rdb.GetSet(ctx, key, strconv.FormatInt(now.UnixNano(), 10)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return time.Time{}, errors.Wrap(err, "GETSET")
	}
	if err := s.rdb.Expire(ctx, key, ttl).Err(); err != nil {
		return time.Time{}, errors.Wrap(err, "EXPIRE")
	}
	if prev == "" {
		return time.Time{}, nil
	}
	nanos, convErr := strconv.ParseInt(prev, 10, 64)
	if convErr != nil {
		// stale/garbage value; treat as absent rather than failing the check
		return time.Time{}, nil
	}
	return time.Unix(0, nanos), nil
}
