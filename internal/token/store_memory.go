package token

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu     sync.Mutex
	views  map[string]View
	byRoom map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		views:  make(map[string]View),
		byRoom: make(map[string][]string),
	}
}

func (s *MemoryStore) Put(_ context.Context, roomID string, views map[string]View) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok, v := range views {
		s.views[tok] = v
		s.byRoom[roomID] = append(s.byRoom[roomID], tok)
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (View, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[token]
	return v, ok, nil
}

func (s *MemoryStore) DeleteRoom(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tok := range s.byRoom[roomID] {
		delete(s.views, tok)
	}
	delete(s.byRoom, roomID)
	return nil
}

// Len is the number of live tokens.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}
