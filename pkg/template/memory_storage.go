package template

import (
	"context"
	"sync"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Templates are typically registered at startup, so process-local
// storage is the default for both tests and production.
type MemoryStorage struct {
	mu        sync.RWMutex
	templates map[string]Template
}

// NewMemoryStorage creates a new in-memory template storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		templates: make(map[string]Template),
	}
}

func (s *MemoryStorage) Put(ctx context.Context, tmpl Template) error {
	if tmpl.ID == "" {
		return ErrTemplateIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.templates[tmpl.ID] = tmpl
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, id string) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmpl, ok := s.templates[id]
	if !ok {
		return nil, ErrTemplateNotFound
	}

	// Return a copy to prevent external mutation of stored data.
	out := tmpl
	return &out, nil
}

func (s *MemoryStorage) List(ctx context.Context) ([]Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Template, 0, len(s.templates))
	for _, tmpl := range s.templates {
		out = append(out, tmpl)
	}
	return out, nil
}

func (s *MemoryStorage) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.templates, id)
	return nil
}
