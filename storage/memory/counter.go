package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/trezcool/mtihani/core/gateway"
)

// CounterStore is an in-process gateway.CounterStore: a mutexed map with per-key
// expiry. Fits single-node deployments and tests; the redis store covers the rest.
type CounterStore struct {
	mutex   sync.Mutex
	entries map[string]*counterEntry

	now func() time.Time
}

type counterEntry struct {
	count     int64
	expiresAt time.Time
}

var _ gateway.CounterStore = (*CounterStore)(nil)

func NewCounterStore() *CounterStore {
	return &CounterStore{
		entries: make(map[string]*counterEntry),
		now:     time.Now,
	}
}

func (s *CounterStore) IncrementAndGet(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.now()
	s.purge(now)

	entry, ok := s.entries[key]
	if !ok || !entry.expiresAt.After(now) {
		entry = &counterEntry{expiresAt: now.Add(window)}
		s.entries[key] = entry
	}
	entry.count++
	return entry.count, nil
}

func (s *CounterStore) Get(_ context.Context, key string) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if entry, ok := s.entries[key]; ok && entry.expiresAt.After(s.now()) {
		return entry.count, nil
	}
	return 0, nil
}

func (s *CounterStore) purge(now time.Time) {
	for key, entry := range s.entries {
		if !entry.expiresAt.After(now) {
			delete(s.entries, key)
		}
	}
}
