package storage

import (
	"context"
	"sync"
)

// MemoryEngine keeps values in a map. It is the default engine and the fake
// used by tests in other packages.
type MemoryEngine struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{values: make(map[string]string)}
}

func (m *MemoryEngine) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryEngine) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryEngine) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryEngine) Ping(context.Context) error { return nil }

func (m *MemoryEngine) Name() string { return "memory" }

// Len reports how many keys are stored.
func (m *MemoryEngine) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
