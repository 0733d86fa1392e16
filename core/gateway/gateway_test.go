package gateway

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"github.com/trezcool/mtihani/core"
	logsvc "github.com/trezcool/mtihani/services/logger"
)

func testLogger() core.Logger {
	return logsvc.NewConsoleLogger(log.New(io.Discard, "", 0))
}

// fakeCounterStore counts without expiring; window rotation is exercised through
// the limiter's key derivation.
type fakeCounterStore struct {
	mutex  sync.Mutex
	counts map[string]int64
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{counts: make(map[string]int64)}
}

func (s *fakeCounterStore) IncrementAndGet(_ context.Context, key string, _ time.Duration) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.counts[key]++
	return s.counts[key], nil
}

func (s *fakeCounterStore) Get(_ context.Context, key string) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.counts[key], nil
}

type fakeSuspicionStore struct {
	mutex sync.Mutex
	last  map[string]time.Time
	swaps int
}

func newFakeSuspicionStore() *fakeSuspicionStore {
	return &fakeSuspicionStore{last: make(map[string]time.Time)}
}

func (s *fakeSuspicionStore) SwapLastSubmission(_ context.Context, key string, now time.Time, _ time.Duration) (time.Time, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	prev := s.last[key]
	s.last[key] = now
	s.swaps++
	return prev, nil
}

// stubClock serves a scripted sequence of instants.
type stubClock struct {
	mutex sync.Mutex
	times []time.Time
	i     int
}

func (c *stubClock) now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	t := c.times[c.i]
	if c.i < len(c.times)-1 {
		c.i++
	}
	return t
}

func testConfig() Config {
	conf := DefaultConfig()
	conf.Quotas = map[OperationClass]int64{
		OpLogin:          5,
		OpRegistration:   3,
		OpExamSubmission: 10,
		OpGenericAPI:     60,
		OpOther:          100,
	}
	return conf
}
