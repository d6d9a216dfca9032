package cache

import "sync"

// Memory is an in-process TranslationCache. It lives for one run.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]string)}
}

// Get returns the cached translation for key if present.
func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

// Put stores a translation.
func (m *Memory) Put(key, original, translated string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = translated
	return nil
}

// Len returns the number of cached entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close is a no-op for Memory.
func (m *Memory) Close() error { return nil }
