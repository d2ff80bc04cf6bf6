// Package assets resolves grid files from GRF archives or the local disk.
package assets

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/Faultbox/heightfield/pkg/encoding"
	"github.com/Faultbox/heightfield/pkg/grf"
)

// ErrNotFound is returned when no archive and no disk path holds a file.
var ErrNotFound = errors.New("asset not found")

// Manager loads files from GRF archives, falling back to the local disk.
type Manager struct {
	archives []*grf.Archive
	cache    *Cache
	mu       sync.RWMutex
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
	}
}

// AddArchive adds a GRF archive to the manager.
// Archives are searched in reverse order (last added = highest priority).
func (m *Manager) AddArchive(path string) error {
	archive, err := grf.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", path, err)
	}

	m.mu.Lock()
	m.archives = append(m.archives, archive)
	m.mu.Unlock()

	return nil
}

// Archives returns the number of open archives.
func (m *Manager) Archives() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.archives)
}

// Load reads a file from the archives, newest first. Without any archive
// the path is read from disk instead. Archive lookups ignore case and
// separator style; disk lookups use the path as given.
func (m *Manager) Load(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.archives) == 0 {
		return m.loadDisk(path)
	}

	key := "grf:" + encoding.NormalizeGRFPath(path)
	if data, ok := m.cache.Get(key); ok {
		return data, nil
	}

	for i := len(m.archives) - 1; i >= 0; i-- {
		data, err := m.archives[i].Read(path)
		if err == nil {
			m.cache.Set(key, data)
			return data, nil
		}
		if !errors.Is(err, grf.ErrNotFound) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
}

func (m *Manager) loadDisk(path string) ([]byte, error) {
	key := "disk:" + path
	if data, ok := m.cache.Get(key); ok {
		return data, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	m.cache.Set(key, data)
	return data, nil
}

// Close closes all archives.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, archive := range m.archives {
		archive.Close()
	}
	m.archives = nil
	m.cache.Clear()
}

// Cache is an in-memory cache for loaded files.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	data, ok := c.data[key]
	c.mu.RUnlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	return int(c.hits.Load()), int(c.misses.Load())
}
