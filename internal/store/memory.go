package store

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// MemoryStore keeps parameters in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	params map[string]string
}

// NewMemoryStore returns a store seeded with a copy of initial.
func NewMemoryStore(initial map[string]string) *MemoryStore {
	m := &MemoryStore{params: make(map[string]string, len(initial))}
	for k, v := range initial {
		m.params[k] = v
	}
	return m
}

func (m *MemoryStore) Lookup(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.params[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.params, key)
	return nil
}

func (m *MemoryStore) List(_ context.Context, prefix string) ([]Param, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Param, 0, len(m.params))
	for k, v := range m.params {
		if strings.HasPrefix(k, prefix) {
			out = append(out, Param{Key: k, Value: v})
		}
	}
	slices.SortFunc(out, func(a, b Param) int { return strings.Compare(a.Key, b.Key) })
	return out, nil
}

// Snapshot returns a copy of every stored parameter.
func (m *MemoryStore) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.params))
	for k, v := range m.params {
		out[k] = v
	}
	return out
}
