package gateway

import (
	"context"
	"time"
)

type (
	// CounterStore counts events in fixed time windows. Implementations must make
	// IncrementAndGet a single atomic operation per key: a separate read followed by
	// a conditional write lets two concurrent callers slip past the quota together.
	CounterStore interface {
		// IncrementAndGet bumps the counter under key and returns the new count.
		// The entry expires `window` after its first write.
		IncrementAndGet(ctx context.Context, key string, window time.Duration) (int64, error)
		// Get returns the current count, or 0 for a missing/expired key.
		Get(ctx context.Context, key string) (int64, error)
	}

	// SuspicionStore tracks the last accepted exam-submission attempt per client.
	SuspicionStore interface {
		// SwapLastSubmission records `now` as the new last-submission timestamp with
		// the given TTL and returns the previous one (zero time if none). The write
		// happens unconditionally so that flagged attempts still update the clock.
		SwapLastSubmission(ctx context.Context, key string, now time.Time, ttl time.Duration) (time.Time, error)
	}
)
