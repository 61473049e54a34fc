package credentials

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore keeps pairs in process memory. Used by tests and local dev.
type MemoryStore struct {
	mu    sync.RWMutex
	pairs map[string]Pair
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pairs: map[string]Pair{}}
}

func (s *MemoryStore) Get(_ context.Context, sessionKey string) (Pair, error) {
	if strings.TrimSpace(sessionKey) == "" {
		return Pair{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pairs[sessionKey], nil
}

func (s *MemoryStore) Set(_ context.Context, sessionKey string, pair Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs[sessionKey] = pair
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pairs, sessionKey)
	return nil
}
