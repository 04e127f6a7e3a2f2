package dana

import (
	"github.com/sarchlab/xfiles/ant"
)

type cacheKey struct {
	asid ant.ASID
	nnid ant.NNID
}

type cacheEntry struct {
	key     cacheKey
	weights []int32
	inUse   int
	lastUse uint64
}

// configCache keeps working copies of configurations. Learning updates the
// cached weights and never the table.
type configCache struct {
	capacity int
	entries  []*cacheEntry
	useCount uint64
}

func newConfigCache(capacity int) *configCache {
	return &configCache{capacity: capacity}
}

func (c *configCache) find(key cacheKey) *cacheEntry {
	for _, e := range c.entries {
		if e.key == key {
			return e
		}
	}

	return nil
}

// acquire returns the entry of the key, loading it through load on a miss.
// The least recently used idle entry is evicted when the cache is full.
func (c *configCache) acquire(
	key cacheKey,
	load func() ([]ant.Word, error),
) (*cacheEntry, error) {
	e := c.find(key)
	if e == nil {
		words, err := load()
		if err != nil {
			return nil, err
		}

		e, err = c.insert(key, words)
		if err != nil {
			return nil, err
		}
	}

	c.useCount++
	e.lastUse = c.useCount
	e.inUse++

	return e, nil
}

func (c *configCache) insert(key cacheKey, words []ant.Word) (*cacheEntry, error) {
	e := &cacheEntry{
		key:     key,
		weights: make([]int32, len(words)),
	}

	for i, w := range words {
		e.weights[i] = int32(w)
	}

	if len(c.entries) < c.capacity {
		c.entries = append(c.entries, e)
		return e, nil
	}

	victim := -1
	for i, candidate := range c.entries {
		if candidate.inUse > 0 {
			continue
		}

		if victim < 0 || candidate.lastUse < c.entries[victim].lastUse {
			victim = i
		}
	}

	if victim < 0 {
		return nil, ErrCacheBusy
	}

	c.entries[victim] = e

	return e, nil
}

func (c *configCache) releaseEntry(e *cacheEntry) {
	if e.inUse == 0 {
		panic("releasing an idle cache entry")
	}

	e.inUse--
}

func (c *configCache) clear() {
	c.entries = nil
}
