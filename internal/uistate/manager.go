package uistate

import (
	"sync"

	"github.com/five82/leaddesk/internal/kvstore"
)

// Manager hands out one Section per section key.
type Manager struct {
	mu       sync.Mutex
	kv       kvstore.KV
	opts     []Option
	sections map[string]*Section
}

// NewManager returns a Manager persisting to kv.
func NewManager(kv kvstore.KV, opts ...Option) *Manager {
	return &Manager{kv: kv, opts: opts, sections: make(map[string]*Section)}
}

// Section returns the section for name, hydrating it on first use.
func (m *Manager) Section(name string) *Section {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sections[name]; ok {
		return s
	}
	s := Open(m.kv, name, m.opts...)
	m.sections[name] = s
	return s
}

// Forget drops the in-memory section so the next Section call rehydrates
// from storage.
func (m *Manager) Forget(name string) {
	m.mu.Lock()
	delete(m.sections, name)
	m.mu.Unlock()
}
