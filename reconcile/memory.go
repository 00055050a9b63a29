package reconcile

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests and ephemeral sessions.
type MemoryStore struct {
	mu        sync.Mutex
	overrides map[string]Override
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{overrides: make(map[string]Override)}
}

func (m *MemoryStore) Put(_ context.Context, o Override) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[o.AnomalyID] = o
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, anomalyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.overrides, anomalyID)
	return nil
}

func (m *MemoryStore) All(_ context.Context) ([]Override, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Override, 0, len(m.overrides))
	for _, o := range m.overrides {
		out = append(out, o)
	}
	return out, nil
}
