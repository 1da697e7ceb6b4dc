package preferences

import (
	"context"
	"sync"
	"time"
)

// counters holds one user's rolling rate state.
type counters struct {
	hourly        int
	daily         int
	lastHourReset time.Time
	lastDayReset  time.Time
}

// MemoryCounterStore is an in-memory implementation of CounterStore.
// State is lost on restart, which matches the engine's default rate
// accounting behavior; use RedisCounterStore when counters must survive
// process restarts.
type MemoryCounterStore struct {
	mu    sync.Mutex
	users map[string]*counters
}

// NewMemoryCounterStore creates a new in-memory counter store.
func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		users: make(map[string]*counters),
	}
}

func (s *MemoryCounterStore) Increment(ctx context.Context, userID string, now time.Time) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.users[userID]
	if !ok {
		c = &counters{lastHourReset: now, lastDayReset: now}
		s.users[userID] = c
	}

	if now.Sub(c.lastHourReset) > time.Hour {
		c.hourly = 0
		c.lastHourReset = now
	}
	if now.Sub(c.lastDayReset) > 24*time.Hour {
		c.daily = 0
		c.lastDayReset = now
	}

	c.hourly++
	c.daily++

	return c.hourly, c.daily, nil
}

func (s *MemoryCounterStore) Decrement(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.users[userID]
	if !ok {
		return nil
	}

	if c.hourly > 0 {
		c.hourly--
	}
	if c.daily > 0 {
		c.daily--
	}
	return nil
}
