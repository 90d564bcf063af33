package tokens

import (
	"context"
	"sync"
)

// MemoryStore keeps the pair in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	pair Pair
}

// NewMemoryStore returns a MemoryStore seeded with p.
func NewMemoryStore(p Pair) *MemoryStore {
	return &MemoryStore{pair: p}
}

func (m *MemoryStore) Get(_ context.Context) (Pair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pair, nil
}

func (m *MemoryStore) Set(_ context.Context, p Pair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = p
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = Pair{}
	return nil
}
