package subscription

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Suitable for development and testing.
type MemoryStorage struct {
	mu         sync.RWMutex
	subs       map[string]*Subscription // id -> subscription
	byEndpoint map[string]string        // endpoint -> id
	byUser     map[string][]string      // userID -> ids
}

// NewMemoryStorage creates a new in-memory subscription storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		subs:       make(map[string]*Subscription),
		byEndpoint: make(map[string]string),
		byUser:     make(map[string][]string),
	}
}

func (s *MemoryStorage) Put(ctx context.Context, sub Subscription) error {
	if sub.ID == "" {
		return ErrEndpointRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, exists := s.subs[sub.ID]; exists {
		// Endpoint or owner may have changed; rebuild indexes.
		delete(s.byEndpoint, prev.Endpoint)
		if prev.UserID != sub.UserID {
			s.removeFromUserIndex(sub.ID, prev.UserID)
			s.byUser[sub.UserID] = append(s.byUser[sub.UserID], sub.ID)
		}
	} else {
		s.byUser[sub.UserID] = append(s.byUser[sub.UserID], sub.ID)
	}

	cp := sub
	s.subs[sub.ID] = &cp
	s.byEndpoint[sub.Endpoint] = sub.ID

	return nil
}

func (s *MemoryStorage) GetByEndpoint(ctx context.Context, endpoint string) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEndpoint[endpoint]
	if !ok {
		return nil, ErrNotFound
	}

	cp := *s.subs[id]
	return &cp, nil
}

func (s *MemoryStorage) ListByUser(ctx context.Context, userID string) ([]Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUser[userID]
	out := make([]Subscription, 0, len(ids))
	for _, id := range ids {
		if sub, ok := s.subs[id]; ok {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (s *MemoryStorage) Deactivate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[id]
	if !ok {
		return ErrNotFound
	}

	sub.IsActive = false
	return nil
}

func (s *MemoryStorage) Touch(ctx context.Context, id string, usedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[id]
	if !ok {
		return ErrNotFound
	}

	sub.LastUsedAt = usedAt
	return nil
}

func (s *MemoryStorage) removeFromUserIndex(id, userID string) {
	ids := s.byUser[userID]
	for i, v := range ids {
		if v == id {
			s.byUser[userID] = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}
