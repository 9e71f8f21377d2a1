// Package cache adapts the teacher's in-memory namespace/key cache into a
// persistent, on-disk results cache: a rerun with --cache can skip
// re-fetching destinations that closed cleanly within a configurable TTL.
package cache

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"
	"time"
)

// Entry is a single cached crawl outcome for a URL.
type Entry struct {
	URL       string    `json:"url"`
	StatusCode int      `json:"status_code"`
	IsBroken  bool      `json:"is_broken"`
	CheckedAt time.Time `json:"checked_at"`
}

// Cache is a thread-safe, namespace-keyed set, grounded on the teacher's
// memoryCache: each namespace (here, a crawl run's cache file) holds a set
// of entries keyed by URL. It also supports persisting to and loading from
// a JSON-lines file on disk, which the teacher's in-memory-only cache
// never needed to do.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	path    string
}

// New creates an empty Cache that will persist to path on Flush.
func New(path string) *Cache {
	return &Cache{entries: make(map[string]Entry), path: path}
}

// Load populates the Cache from path, a JSON-lines file of Entry values. A
// missing file is not an error: the cache simply starts empty.
func Load(path string) (*Cache, error) {
	c := New(path)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		c.entries[e.URL] = e
	}
	return c, scanner.Err()
}

// Set records the outcome of a crawled URL.
func (c *Cache) Set(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[e.URL] = e
}

// Get returns the cached entry for url and whether it was found and is
// still within maxAge.
func (c *Cache) Get(url string, maxAge time.Duration) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[url]
	if !ok {
		return Entry{}, false
	}
	if maxAge > 0 && time.Since(e.CheckedAt) > maxAge {
		return Entry{}, false
	}
	return e, true
}

// Contains reports whether url has any cached entry at all, mirroring the
// teacher's Cachable.Contains signature for a single default namespace.
func (c *Cache) Contains(url string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[url]
	return ok
}

// TTLCache binds a Cache to a fixed max age, adapting it to the
// crawl.ResultCache seam the coordinator consults before dispatching a
// page fetch, so a rerun can skip destinations that closed cleanly within
// maxAge.
type TTLCache struct {
	cache  *Cache
	maxAge time.Duration
}

// WithTTL adapts c to crawl.ResultCache, treating any entry older than
// maxAge as absent. maxAge <= 0 means entries never expire.
func (c *Cache) WithTTL(maxAge time.Duration) *TTLCache {
	return &TTLCache{cache: c, maxAge: maxAge}
}

// Lookup implements crawl.ResultCache.
func (t *TTLCache) Lookup(url string) (statusCode int, isBroken bool, fresh bool) {
	e, ok := t.cache.Get(url, t.maxAge)
	if !ok {
		return 0, false, false
	}
	return e.StatusCode, e.IsBroken, true
}

// Flush writes every entry to the Cache's path as JSON lines.
func (c *Cache) Flush() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Create(c.path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, e := range c.entries {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}
