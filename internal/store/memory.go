package store

import (
	"context"
	"sync"
)

// MemoryStore is a process-local KV. Contents are lost on exit.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

// Get returns the value stored under key.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

// Set stores value under key.
func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}
