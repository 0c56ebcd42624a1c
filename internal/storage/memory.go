package storage

import (
	"context"
	"sync"
)

// memoryStorage keeps items in process memory only. Used for ephemeral shells and tests.
type memoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStorage creates a new in-memory storage
func NewMemoryStorage() *memoryStorage {
	return &memoryStorage{items: make(map[string]string)}
}

func (s *memoryStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.items[key]
	return value, ok, nil
}

func (s *memoryStorage) SetItem(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

func (s *memoryStorage) RemoveItem(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

func (s *memoryStorage) Close() error {
	return nil
}
