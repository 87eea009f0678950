// Package kvstore is the durable string key-value store behind persisted UI
// state and the session record. SQLite holds it on disk; Mem backs tests.
package kvstore

import (
	"sort"
	"sync"
)

// KV is a string key-value store. Get reports a missing key with ok=false and
// a nil error.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
	Keys() ([]string, error)
	Close() error
}

var (
	_ KV = (*Mem)(nil)
	_ KV = (*SQLite)(nil)
)

// Mem is an in-memory KV.
type Mem struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMem returns an empty in-memory store.
func NewMem() *Mem {
	return &Mem{data: make(map[string]string)}
}

func (m *Mem) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Mem) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Mem) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Mem) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op for Mem.
func (m *Mem) Close() error {
	return nil
}
