package translation

import (
	"sync"
	"sync/atomic"
)

type cacheKey struct {
	text string
	lang string
}

// Cache memoizes translations per (source text, target language) for one
// language run. It is safe for concurrent use. It does not deduplicate
// in-flight requests: two workers that miss on the same key will both call
// the provider, and the first Put wins.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]string

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{
		entries: make(map[cacheKey]string),
	}
}

// Get retrieves the translation of text into lang
func (c *Cache) Get(text, lang string) (string, bool) {
	c.mu.RLock()
	out, ok := c.entries[cacheKey{text, lang}]
	c.mu.RUnlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return out, ok
}

// Put stores a translation and returns the value held for the key. If the
// key already holds a value the existing value is kept and returned, so a
// cached translation never changes once observed.
func (c *Cache) Put(text, lang, translated string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey{text, lang}
	if existing, ok := c.entries[key]; ok {
		return existing
	}
	c.entries[key] = translated
	return translated
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns the number of lookups that hit and missed
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
