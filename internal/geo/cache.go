package geo

import (
	"time"

	"github.com/coocood/freecache"
)

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

// minimum freecache size is 512KB, smaller values are rounded up
const cacheSize = 512 * 1024

type freeCache struct {
	cache *freecache.Cache
	ttl   int
}

// NewCache returns an in-memory cache. ttl <= 0 keeps entries for the whole
// session.
func NewCache(ttl time.Duration) Cache {
	return &freeCache{
		cache: freecache.NewCache(cacheSize),
		ttl:   int(ttl.Seconds()),
	}
}

func (c *freeCache) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *freeCache) Set(key string, value []byte) {
	_ = c.cache.Set([]byte(key), value, max(c.ttl, 0))
}

type noopCache struct{}

func (noopCache) Get(string) ([]byte, bool) { return nil, false }
func (noopCache) Set(string, []byte)        {}
