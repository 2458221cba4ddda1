// Package assets finds textures inside WAD3 texture packages.
package assets

import (
	"container/list"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/map2prop/internal/logger"
	"github.com/Faultbox/map2prop/pkg/formats"
)

// Manager searches an ordered list of WAD3 packages. Opened packages are
// kept in a bounded cache; packages that fail to open are skipped.
type Manager struct {
	packages []string
	cache    *Cache
	failed   map[string]bool
	mu       sync.Mutex
}

// NewManager creates a manager keeping at most cacheSize packages open.
// A cacheSize of 0 keeps all of them.
func NewManager(cacheSize int) *Manager {
	return &Manager{
		cache:  NewCache(cacheSize),
		failed: make(map[string]bool),
	}
}

// SetPackages replaces the search order.
func (m *Manager) SetPackages(paths []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.packages = append([]string(nil), paths...)
}

// Packages returns the search order.
func (m *Manager) Packages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.packages...)
}

// Find returns a texture from the first package that contains it, with the
// path of that package.
func (m *Manager) Find(name string) (*formats.MipTexture, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, path := range m.packages {
		wad, err := m.open(path)
		if err != nil {
			continue
		}
		if !wad.Has(name) {
			continue
		}
		tex, err := wad.Texture(name)
		if err != nil {
			return nil, path, fmt.Errorf("reading %s from %s: %w", name, path, err)
		}
		return tex, path, nil
	}
	return nil, "", fmt.Errorf("%w: %s", formats.ErrTextureNotFound, name)
}

// open returns a cached package, reading it on a miss.
func (m *Manager) open(path string) (*formats.WAD, error) {
	if wad, ok := m.cache.Get(path); ok {
		return wad, nil
	}
	if m.failed[path] {
		return nil, fmt.Errorf("package %s unavailable", path)
	}

	wad, err := formats.ParseWAD3File(path)
	if err != nil {
		m.failed[path] = true
		logger.Named("assets").Warn("skipping texture package", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	m.cache.Set(path, wad)
	return wad, nil
}

// Close drops all cached packages.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Clear()
	m.failed = make(map[string]bool)
}

// Cache is a least recently used cache of parsed packages.
type Cache struct {
	capacity int
	order    *list.List // front is most recently used
	items    map[string]*list.Element
	mu       sync.Mutex

	// Stats
	hits   int
	misses int
}

type cacheEntry struct {
	key string
	wad *formats.WAD
}

// NewCache creates a cache holding at most capacity packages, or any number
// when capacity is 0 or less.
func NewCache(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Get retrieves a package and marks it as recently used.
func (c *Cache) Get(key string) (*formats.WAD, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).wad, true
}

// Set stores a package, evicting the least recently used one when full.
func (c *Cache) Set(key string, wad *formats.WAD) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry).wad = wad
		c.order.MoveToFront(el)
		return
	}
	if c.capacity > 0 && c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
	c.items[key] = c.order.PushFront(&cacheEntry{key: key, wad: wad})
}

// Len returns the number of cached packages.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[string]*list.Element)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
