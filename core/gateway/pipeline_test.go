package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestPipeline(conf Config, counters CounterStore, suspicion SuspicionStore, hooks ...DenyHook) *Pipeline {
	logger := testLogger()
	limiter := NewRateLimiter(counters, conf, logger)
	limiter.now = func() time.Time { return time.Unix(60, 0) }
	detector := NewDetector(suspicion, conf, nil, logger)
	detector.now = func() time.Time { return time.Unix(60, 0) }
	return NewPipeline(NewAccessGate(conf, logger), limiter, detector, hooks...)
}

func TestPipelineOrdering(t *testing.T) {
	ctx := context.Background()

	t.Run("clean request passes all stages", func(t *testing.T) {
		p := newTestPipeline(testConfig(), newFakeCounterStore(), newFakeSuspicionStore())
		d, err := p.Check(ctx, Request{Path: "/v1/exams/1/submit", Origin: "203.0.113.7", UserAgent: regularAgent})
		assert.NoError(t, err)
		assert.True(t, d.Allowed)
	})

	t.Run("gate denial short-circuits even under an exhausted quota", func(t *testing.T) {
		conf := testConfig()
		conf.Quotas[OpOther] = 1
		counters := newFakeCounterStore()
		p := newTestPipeline(conf, counters, newFakeSuspicionStore())
		req := Request{Path: "/admin/settings", Origin: "203.0.113.7", UserAgent: regularAgent}

		for i := 0; i < 3; i++ {
			d, err := p.Check(ctx, req)
			assert.NoError(t, err)
			assert.Equal(t, ReasonIPNotWhitelisted, d.Reason,
				"gate must deny before the limiter ever counts")
		}
		// the limiter never ran for these requests
		assert.Empty(t, counters.counts)
	})

	t.Run("limiter runs before detector", func(t *testing.T) {
		conf := testConfig()
		conf.Quotas[OpExamSubmission] = 1
		store := newFakeSuspicionStore()
		p := newTestPipeline(conf, newFakeCounterStore(), store)
		// bot agent would also trip the detector; the quota must win
		req := Request{Path: "/v1/exams/1/submit", Origin: "203.0.113.7", UserAgent: "bot"}

		d, _ := p.Check(ctx, req)
		assert.Equal(t, ReasonSuspiciousActivity, d.Reason)

		d, _ = p.Check(ctx, req)
		assert.Equal(t, ReasonRateLimited, d.Reason)
		assert.Equal(t, 1, store.swaps, "detector must be skipped after a limiter denial")
	})

	t.Run("detector only applies to exam submissions", func(t *testing.T) {
		store := newFakeSuspicionStore()
		p := newTestPipeline(testConfig(), newFakeCounterStore(), store)

		d, err := p.Check(ctx, Request{Path: "/v1/users/login", Origin: "203.0.113.7", UserAgent: "bot"})
		assert.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Zero(t, store.swaps)
	})
}

func TestPipelineDenyHooks(t *testing.T) {
	var denied []Decision
	hook := func(_ Request, _ OperationClass, d Decision) { denied = append(denied, d) }

	conf := testConfig()
	conf.Quotas[OpLogin] = 1
	p := newTestPipeline(conf, newFakeCounterStore(), newFakeSuspicionStore(), hook)
	req := Request{Path: "/v1/users/login", Origin: "203.0.113.7", UserAgent: regularAgent}

	d, _ := p.Check(context.Background(), req)
	assert.True(t, d.Allowed)
	assert.Empty(t, denied)

	d, _ = p.Check(context.Background(), req)
	assert.False(t, d.Allowed)
	assert.Len(t, denied, 1)
	assert.Equal(t, ReasonRateLimited, denied[0].Reason)
}

func TestRequestIdentityPrefersForwardedChain(t *testing.T) {
	req := Request{Origin: "10.0.0.2", ForwardedChain: "198.51.100.9, 10.0.0.2", Subject: "stu-1"}
	id := req.Identity()
	assert.Equal(t, "198.51.100.9", id.Origin)
	assert.Equal(t, "198.51.100.9|stu-1", id.Key())

	anon := Request{Origin: "10.0.0.2"}
	assert.Equal(t, "10.0.0.2|anonymous", anon.Identity().Key())
}

func TestClientIdentityKeyIPv6(t *testing.T) {
	// IPv6 origins contain colons; distinct identities must not share a key.
	a := ClientIdentity{Origin: "2001:db8::1", Subject: "stu-1"}
	b := ClientIdentity{Origin: "2001:db8::1:stu", Subject: "1"}
	assert.NotEqual(t, a.Key(), b.Key())
	assert.Equal(t, "2001:db8::1|stu-1", a.Key())
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	conf := DefaultConfig()
	conf.Quotas[OpLogin] = 0
	assert.Error(t, conf.Validate())

	conf = DefaultConfig()
	conf.Window = 0
	assert.Error(t, conf.Validate())
}
