package cache

import (
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"yadro.com/comicsearch/client/core"
)

type entry struct {
	res     core.SearchResult
	expires time.Time
}

// Cache keeps recent search results keyed by request path.
// A zero ttl keeps entries until they are evicted or purged.
type Cache struct {
	lru   *lru.Cache
	ttl   time.Duration
	clock core.Clock
}

func New(size int, ttl time.Duration) (*Cache, error) {
	if size <= 0 {
		return nil, errors.New("cache size must be positive")
	}
	l, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, ttl: ttl, clock: time.Now}, nil
}

func (c *Cache) Get(key string) (core.SearchResult, bool) {
	v, ok := c.lru.Get(key)
	if !ok {
		return core.SearchResult{}, false
	}
	e := v.(entry)
	if c.ttl > 0 && c.clock().After(e.expires) {
		c.lru.Remove(key)
		return core.SearchResult{}, false
	}
	return e.res, true
}

func (c *Cache) Add(key string, res core.SearchResult) {
	c.lru.Add(key, entry{res: res, expires: c.clock().Add(c.ttl)})
}

func (c *Cache) Purge() {
	c.lru.Purge()
}

func (c *Cache) Len() int {
	return c.lru.Len()
}
