package kv

import "sync"

// Memory is an in-process Store.
type Memory struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemory constructs an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get returns the value for key.
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	return value, ok, nil
}

// Apply writes the batch.
func (m *Memory) Apply(batch Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, value := range batch.Set {
		m.data[key] = value
	}
	for _, key := range batch.Delete {
		delete(m.data, key)
	}
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
