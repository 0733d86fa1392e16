package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/trezcool/mtihani/core/gateway"
)

// SuspicionStore is the in-process gateway.SuspicionStore counterpart.
type SuspicionStore struct {
	mutex   sync.Mutex
	entries map[string]*suspicionEntry

	now func() time.Time
}

type suspicionEntry struct {
	at        time.Time
	expiresAt time.Time
}

var _ gateway.SuspicionStore = (*SuspicionStore)(nil)

func NewSuspicionStore() *SuspicionStore {
	return &SuspicionStore{
		entries: make(map[string]*suspicionEntry),
		now:     time.Now,
	}
}

func (s *SuspicionStore) SwapLastSubmission(_ context.Context, key string, now time.Time, ttl time.Duration) (time.Time, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	wall := s.now()
	var last time.Time
	if entry, ok := s.entries[key]; ok && entry.expiresAt.After(wall) {
		last = entry.at
	}
	s.entries[key] = &suspicionEntry{at: now, expiresAt: wall.Add(ttl)}

	for k, entry := range s.entries {
		if !entry.expiresAt.After(wall) {
			delete(s.entries, k)
		}
	}
	return last, nil
}
