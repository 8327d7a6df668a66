package contact

import (
	"context"
	"sync"
)

// Store persists messages. List returns them oldest first.
type Store interface {
	Save(ctx context.Context, m Message) error
	List(ctx context.Context) ([]Message, error)
}

// MemoryStore keeps messages for the life of the process.
type MemoryStore struct {
	mu       sync.RWMutex
	messages []Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, m Message) error {
	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out, nil
}
