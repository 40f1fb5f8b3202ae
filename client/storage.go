package client

import "sync"

// CookieStore abstracts the cookie surface the stores persist through.
type CookieStore interface {
	Get(name string) string
	Set(name, value string)
	Delete(name string)
}

// LegacyStorage abstracts the old browser-storage blob that favorites lived
// in before the cookie format. Only read during the one-time migration.
type LegacyStorage interface {
	Get(key string) string
	Delete(key string)
}

// MemoryCookies is a map-backed CookieStore.
type MemoryCookies struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryCookies creates an empty in-memory cookie store.
func NewMemoryCookies() *MemoryCookies {
	return &MemoryCookies{values: map[string]string{}}
}

func (m *MemoryCookies) Get(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[name]
}

func (m *MemoryCookies) Set(name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] = value
}

func (m *MemoryCookies) Delete(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, name)
}

// MemoryStorage is a map-backed LegacyStorage.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStorage creates an empty in-memory legacy storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: map[string]string{}}
}

func (m *MemoryStorage) Get(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

func (m *MemoryStorage) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *MemoryStorage) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}
