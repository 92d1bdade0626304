package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps collections in process memory
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

// Read returns a copy of the stored blob
func (m *MemoryBackend) Read(_ context.Context, collection string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blob, ok := m.data[collection]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

// Write replaces the stored blob with a copy of data
func (m *MemoryBackend) Write(_ context.Context, collection string, data []byte) error {
	blob := make([]byte, len(data))
	copy(blob, data)

	m.mu.Lock()
	m.data[collection] = blob
	m.mu.Unlock()
	return nil
}

// Close is a no-op
func (m *MemoryBackend) Close() error {
	return nil
}
