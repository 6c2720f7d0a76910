package service

import (
	"sync"
	"time"

	"fishguard/internal/services/scan/domain"
)

// resultCache remembers recent scan results, bounded two ways: entries
// expire after ttl (checked lazily on lookup and by a periodic sweep), and
// once the capacity ceiling is exceeded the single oldest-inserted entry
// is evicted
type resultCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	order   []string // insertion order, oldest first
	ttl     time.Duration
	max     int
	now     func() time.Time
}

type cacheEntry struct {
	result     domain.ScanResult
	insertedAt time.Time
}

func newResultCache(ttl time.Duration, max int) *resultCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if max <= 0 {
		max = 100
	}
	return &resultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		max:     max,
		now:     time.Now,
	}
}

// get returns a live cached result; expired entries are dropped on sight
func (c *resultCache) get(url string) (domain.ScanResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[url]
	if !ok {
		return domain.ScanResult{}, false
	}
	if c.now().Sub(e.insertedAt) >= c.ttl {
		c.drop(url)
		return domain.ScanResult{}, false
	}
	return e.result, true
}

// put inserts or refreshes an entry, then enforces the capacity ceiling
func (c *resultCache) put(url string, r domain.ScanResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[url]; ok {
		c.drop(url)
	}
	c.entries[url] = cacheEntry{result: r, insertedAt: c.now()}
	c.order = append(c.order, url)

	for len(c.entries) > c.max {
		c.drop(c.order[0])
	}
}

// sweep removes every expired entry
func (c *resultCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	kept := c.order[:0]
	for _, url := range c.order {
		e, ok := c.entries[url]
		if !ok {
			continue
		}
		if now.Sub(e.insertedAt) >= c.ttl {
			delete(c.entries, url)
			continue
		}
		kept = append(kept, url)
	}
	c.order = kept
}

func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// drop removes url from both the map and the order list; callers hold mu
func (c *resultCache) drop(url string) {
	delete(c.entries, url)
	for i, u := range c.order {
		if u == url {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
