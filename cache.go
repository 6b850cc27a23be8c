package spacetraveling

import (
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// PageCache holds rendered-page inputs for the published content version so
// list and post requests do not hit the content API on every hit. Entries
// expire after ttl; preview requests must bypass it.
//
// Loads run outside the lock and are collapsed per key, so a slow miss never
// delays hits on other keys.
type PageCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	gen     uint64
	entries map[string]cacheEntry
	sf      singleflight.Group
}

type cacheEntry struct {
	value   any
	fetched time.Time
}

// NewPageCache creates a PageCache whose entries live for ttl.
func NewPageCache(ttl time.Duration) *PageCache {
	return &PageCache{ttl: ttl, entries: make(map[string]cacheEntry)}
}

// Invalidate clears the cache so the next read triggers a fresh load. Loads
// already in flight finish but their results are not stored.
func (c *PageCache) Invalidate() {
	c.mu.Lock()
	c.gen++
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// List returns the cached list holding the first pages pages, calling load
// when the entry is missing or stale. Errors are not cached.
func (c *PageCache) List(pages int, load func() (PaginationState, error)) (PaginationState, error) {
	v, err := c.get("list:"+strconv.Itoa(pages), func() (any, error) { return load() })
	if err != nil {
		return PaginationState{}, err
	}
	return v.(PaginationState), nil
}

// Post returns the cached view of the post with uid, calling load when the
// entry is missing or stale. Errors, including not found, are not cached.
func (c *PageCache) Post(uid string, load func() (PostView, error)) (PostView, error) {
	v, err := c.get("post:"+uid, func() (any, error) { return load() })
	if err != nil {
		return PostView{}, err
	}
	return v.(PostView), nil
}

// Archive returns the cached full post list used by the feed and sitemap.
func (c *PageCache) Archive(load func() ([]PostSummary, error)) ([]PostSummary, error) {
	v, err := c.get("archive", func() (any, error) { return load() })
	if err != nil {
		return nil, err
	}
	return v.([]PostSummary), nil
}

func (c *PageCache) get(key string, load func() (any, error)) (any, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	gen := c.gen
	c.mu.RUnlock()
	if ok && time.Since(e.fetched) < c.ttl {
		return e.value, nil
	}

	v, err, _ := c.sf.Do(strconv.FormatUint(gen, 10)+"/"+key, func() (any, error) {
		v, err := load()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.entries[key] = cacheEntry{value: v, fetched: time.Now()}
		}
		c.mu.Unlock()
		return v, nil
	})
	return v, err
}
