package storage

import "sync"

// MemoryStore keeps values in process memory. It is used by tests and by
// the "memory" backend for throwaway sessions.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the value stored under key
func (m *MemoryStore) Get(key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set replaces the value stored under key
func (m *MemoryStore) Set(key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// CompareAndSwap replaces the value only if it is unchanged since it was read
func (m *MemoryStore) CompareAndSwap(key, old string, existed bool, value string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.values[key]
	if ok != existed || (ok && current != old) {
		return false, nil
	}
	m.values[key] = value
	return true, nil
}

// Close is a no-op for MemoryStore
func (m *MemoryStore) Close() error {
	return nil
}
