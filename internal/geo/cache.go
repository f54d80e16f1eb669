package geo

import (
	"errors"
	"io/fs"
	"log/slog"
	"sync"

	"ioccollector/internal/dataset"
)

// Cache maps a looked-up address to its result. Entries never expire and are never
// overwritten, so failures are as sticky as successes.
type Cache struct {
	path    string
	mu      sync.RWMutex
	entries map[string]Result
}

// LoadCache reads the cache file at path. A missing or unreadable file yields an empty cache.
func LoadCache(path string) *Cache {
	c := &Cache{path: path, entries: make(map[string]Result)}
	if path == "" {
		return c
	}
	var entries map[string]Result
	if err := dataset.ReadJSON(path, &entries); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("geo cache unreadable, starting empty", "path", path, "err", err)
		}
		return c
	}
	for k, v := range entries {
		c.entries[k] = v
	}
	return c
}

// Get returns the cached result for addr.
func (c *Cache) Get(addr string) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[addr]
	return r, ok
}

// Add stores r under addr unless an entry already exists. It reports whether r was stored.
func (c *Cache) Add(addr string, r Result) bool {
	if addr == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[addr]; ok {
		return false
	}
	c.entries[addr] = r
	return true
}

// Len returns the number of cached addresses.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Save writes the whole cache to its file atomically. A cache without a path is not persisted.
func (c *Cache) Save() error {
	if c.path == "" {
		return nil
	}
	c.mu.RLock()
	snapshot := make(map[string]Result, len(c.entries))
	for k, v := range c.entries {
		snapshot[k] = v
	}
	c.mu.RUnlock()
	return dataset.WriteJSON(c.path, snapshot)
}
