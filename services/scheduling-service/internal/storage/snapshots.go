// Package storage persists the scheduler's state as opaque JSON snapshots
// keyed by logical record name. The engine only relies on load returning the
// previously saved payload; the backing medium is interchangeable.
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrNoSnapshot is returned by Load when a record has never been saved.
var ErrNoSnapshot = errors.New("no snapshot")

type Snapshots interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, payload []byte) error
}

// Memory keeps snapshots in process memory. Used by tests and by the
// zero-dependency demo mode (STORE_DRIVER=memory); nothing survives a
// restart.
type Memory struct {
	mu      sync.Mutex
	records map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.records[name]
	if !ok {
		return nil, ErrNoSnapshot
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func (m *Memory) Save(_ context.Context, name string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(payload))
	copy(stored, payload)
	m.records[name] = stored
	return nil
}
