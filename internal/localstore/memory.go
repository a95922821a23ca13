package localstore

import (
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Memory is an in-process LocalStorage.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
	fail  error
}

// NewMemory creates an empty in-memory storage
func NewMemory() *Memory {
	return &Memory{items: map[string]string{}}
}

// FailWrites makes every subsequent SetItem/RemoveItem return err.
// Pass nil to restore normal behaviour.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

func (m *Memory) GetItem(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok
}

func (m *Memory) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.items[key] = value
	return nil
}

func (m *Memory) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	delete(m.items, key)
	return nil
}

func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := lo.Keys(m.items)
	slices.Sort(keys)
	return keys
}
