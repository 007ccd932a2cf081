package server

import (
	"container/list"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ArtifactCache is a concurrent-safe LRU cache for encoded map artifacts
// with TTL expiration. Entries are keyed by map name and format so one
// map's HTML, SVG, and GeoJSON encodings cache independently.
type ArtifactCache struct {
	mu         sync.RWMutex
	entries    map[string]*artifactEntry
	lru        *list.List // front=oldest, back=newest; values are keys
	maxEntries int
	ttl        time.Duration
	hits       atomic.Int64
	misses     atomic.Int64
}

type artifactEntry struct {
	data      []byte
	createdAt time.Time
	elem      *list.Element
}

// CacheStats contains cache performance statistics.
type CacheStats struct {
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
}

// NewArtifactCache creates an ArtifactCache with the given capacity and TTL.
func NewArtifactCache(maxEntries int, ttl time.Duration) *ArtifactCache {
	return &ArtifactCache{
		entries:    make(map[string]*artifactEntry),
		lru:        list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

// artifactKey builds the cache key for an encoded artifact.
func artifactKey(name, format string) string {
	return name + "/" + format
}

// Get retrieves a cached encoding. Returns nil on miss or expiration.
func (c *ArtifactCache) Get(name, format string) []byte {
	key := artifactKey(name, format)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	switch {
	case !ok:
		c.misses.Add(1)
		return nil
	case time.Since(entry.createdAt) > c.ttl:
		c.drop(key, entry)
		c.misses.Add(1)
		return nil
	}

	c.lru.MoveToBack(entry.elem)
	c.hits.Add(1)
	return entry.data
}

// Put stores an encoding, evicting the oldest entry if at capacity.
func (c *ArtifactCache) Put(name, format string, data []byte) {
	key := artifactKey(name, format)

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		entry.data = data
		entry.createdAt = time.Now()
		c.lru.MoveToBack(entry.elem)
		return
	}

	for len(c.entries) >= c.maxEntries {
		front := c.lru.Front()
		if front == nil {
			break
		}
		oldest := front.Value.(string)
		c.drop(oldest, c.entries[oldest])
	}

	c.entries[key] = &artifactEntry{
		data:      data,
		createdAt: time.Now(),
		elem:      c.lru.PushBack(key),
	}
}

// Invalidate removes every cached encoding of the named map.
func (c *ArtifactCache) Invalidate(name string) {
	prefix := name + "/"

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.drop(key, entry)
		}
	}
}

// Stats returns cache performance statistics.
func (c *ArtifactCache) Stats() CacheStats {
	c.mu.RLock()
	entries := len(c.entries)
	maxEntries := c.maxEntries
	c.mu.RUnlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return CacheStats{
		Entries:    entries,
		MaxEntries: maxEntries,
		Hits:       hits,
		Misses:     misses,
		HitRate:    hitRate,
	}
}

// drop removes an entry from both the map and the LRU list. Caller holds mu.
func (c *ArtifactCache) drop(key string, entry *artifactEntry) {
	c.lru.Remove(entry.elem)
	delete(c.entries, key)
}
