package tui

import "container/list"

// paneSide selects which rendering of a physical row is wanted.
type paneSide uint8

const (
	beforeSide paneSide = iota
	afterSide
	unifiedSide
)

// cacheKey identifies one styled row. State that affects styling but
// is not part of the key (filter, granularity, layout) clears the
// whole cache instead.
type cacheKey struct {
	side   paneSide
	row    int
	width  int
	cursor bool
}

type cacheEntry struct {
	key   cacheKey
	value string
}

// renderCache memoizes styled rows, evicting the least recently used
// entry past capacity. It belongs to one model and runs on the event
// loop, so there is no locking.
type renderCache struct {
	capacity int
	entries  map[cacheKey]*list.Element
	lru      *list.List
}

func newRenderCache(capacity int) *renderCache {
	if capacity < 1 {
		capacity = 1
	}
	return &renderCache{
		capacity: capacity,
		entries:  make(map[cacheKey]*list.Element),
		lru:      list.New(),
	}
}

func (c *renderCache) get(k cacheKey) (string, bool) {
	elem, ok := c.entries[k]
	if !ok {
		return "", false
	}
	c.lru.MoveToFront(elem)
	return elem.Value.(*cacheEntry).value, true
}

func (c *renderCache) put(k cacheKey, v string) {
	if elem, ok := c.entries[k]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = v
		return
	}
	c.entries[k] = c.lru.PushFront(&cacheEntry{key: k, value: v})
	for c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *renderCache) clear() {
	c.entries = make(map[cacheKey]*list.Element)
	c.lru.Init()
}

func (c *renderCache) len() int {
	return c.lru.Len()
}
