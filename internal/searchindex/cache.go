package searchindex

import (
	"container/list"
	"sync"
	"time"
)

const (
	cacheMaxEntries = 1000
	cacheTTL        = 10 * time.Second
	cachePressureAt = int(float64(cacheMaxEntries) * 0.9)
)

// cacheKey identifies one memoized search: the query text, the directory it
// was scoped to, and whether the match was case-sensitive.
type cacheKey struct {
	query         string
	path          string
	caseSensitive bool
}

type cacheEntry struct {
	key      cacheKey
	results  []Result
	storedAt time.Time
}

// resultCache is a small LRU with a TTL, matching SPEC_FULL.md §4.2's
// "repeated identical searches within a short window are served from cache"
// requirement. Under memory pressure (near its hard cap) it shrinks itself
// by evicting the coldest half rather than rejecting new entries outright.
type resultCache struct {
	mu       sync.Mutex
	ll       *list.List
	index    map[cacheKey]*list.Element
	hits     uint64
	misses   uint64
	evictions uint64
}

func newResultCache() *resultCache {
	return &resultCache{
		ll:    list.New(),
		index: make(map[cacheKey]*list.Element),
	}
}

func (c *resultCache) get(key cacheKey) ([]Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		c.misses++
		return nil, false
	}
	ce := el.Value.(*cacheEntry)
	if time.Since(ce.storedAt) > cacheTTL {
		c.ll.Remove(el)
		delete(c.index, key)
		c.misses++
		return nil, false
	}
	c.ll.MoveToFront(el)
	c.hits++
	return ce.results, true
}

func (c *resultCache) put(key cacheKey, results []Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		el.Value.(*cacheEntry).results = results
		el.Value.(*cacheEntry).storedAt = time.Now()
		c.ll.MoveToFront(el)
		return
	}

	if c.ll.Len() >= cachePressureAt {
		c.shrinkLocked()
	}

	ce := &cacheEntry{key: key, results: results, storedAt: time.Now()}
	el := c.ll.PushFront(ce)
	c.index[key] = el

	for c.ll.Len() > cacheMaxEntries {
		c.evictOldestLocked()
	}
}

// shrinkLocked drops the coldest half of the cache, called opportunistically
// when the cache is approaching its hard cap rather than waiting until it is
// completely full.
func (c *resultCache) shrinkLocked() {
	target := c.ll.Len() / 2
	for c.ll.Len() > target {
		c.evictOldestLocked()
	}
}

func (c *resultCache) evictOldestLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	ce := el.Value.(*cacheEntry)
	delete(c.index, ce.key)
	c.evictions++
}

func (c *resultCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll = list.New()
	c.index = make(map[cacheKey]*list.Element)
}

func (c *resultCache) stats() (hits, misses, evictions uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, c.evictions
}
