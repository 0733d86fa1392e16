package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
)

// RateLimiter admits requests under fixed-window quotas. Fixed windows are
// intentional: O(1) checks and bounded memory, at the accepted cost of up to 2x
// bursts across a window boundary.
type RateLimiter struct {
	store  CounterStore
	window time.Duration
	quotas map[OperationClass]int64
	logger core.Logger

	now func() time.Time
}

func NewRateLimiter(store CounterStore, conf Config, logger core.Logger) *RateLimiter {
	return &RateLimiter{
		store:  store,
		window: conf.Window,
		quotas: conf.Quotas,
		logger: logger,
		now:    time.Now,
	}
}

// Admit decides whether one more operation of the given class is allowed for the
// identity within the current window. The counter increment and the quota
// comparison ride on a single atomic store operation.
func (rl *RateLimiter) Admit(ctx context.Context, id ClientIdentity, class OperationClass) (Decision, error) {
	window := rl.now().Unix() / int64(rl.window/time.Second)
	key := fmt.Sprintf("rl:%s:%s:%d", class, id.Key(), window)

	count, err := rl.store.IncrementAndGet(ctx, key, rl.window)
	if err != nil {
		return Decision{}, errors.Wrap(err, "incrementing window counter")
	}
	if count > rl.quota(class) {
		rl.logger.Warn("rate limit exceeded", map[string]interface{}{
			"origin": id.Origin, "subject": id.Subject, "class": string(class), "count": count,
		})
		return DenyRateLimited(rl.window), nil
	}
	return Allow(), nil
}

func (rl *RateLimiter) quota(class OperationClass) int64 {
	if limit, ok := rl.quotas[class]; ok {
		return limit
	}
	return rl.quotas[OpOther]
}
