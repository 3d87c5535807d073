package store

import (
	"sync"

	"repairdesk/internal/core"
)

// MemoryStore holds the snapshot in process memory. Used by tests and by
// ephemeral demo runs where durability does not matter.
type MemoryStore struct {
	mu   sync.RWMutex
	snap *core.Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (*core.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snap == nil {
		return nil, ErrNoSnapshot
	}
	return m.snap.Clone(), nil
}

func (m *MemoryStore) Save(snap *core.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap.Clone()
	return nil
}
