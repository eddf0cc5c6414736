package assets

import (
	"container/list"
	"sync"

	"go.uber.org/zap"
)

// Cache is an LRU texture cache in front of a TextureSource, bounded by
// total encoded byte size. Maps share tileset sheets, so unloading one map
// rarely needs to drop textures the next map reuses.
type Cache struct {
	mu       sync.Mutex
	source   TextureSource
	maxBytes int
	curBytes int
	order    *list.List // front = most recent
	entries  map[string]*list.Element
	log      *zap.Logger
}

type cacheEntry struct {
	name string
	tex  *Texture
}

func NewCache(source TextureSource, maxBytes int, log *zap.Logger) *Cache {
	return &Cache{
		source:   source,
		maxBytes: maxBytes,
		order:    list.New(),
		entries:  make(map[string]*list.Element, 32),
		log:      log,
	}
}

// Get returns a cached texture, loading through the source on a miss.
func (c *Cache) Get(name string) (*Texture, error) {
	c.mu.Lock()
	if el, ok := c.entries[name]; ok {
		c.order.MoveToFront(el)
		tex := el.Value.(*cacheEntry).tex
		c.mu.Unlock()
		return tex, nil
	}
	c.mu.Unlock()

	// Load outside the lock; a racing double-load just wastes one read.
	tex, err := c.source.Load(name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[name]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*cacheEntry).tex, nil
	}
	c.entries[name] = c.order.PushFront(&cacheEntry{name: name, tex: tex})
	c.curBytes += tex.SizeBytes()
	c.evict()
	return tex, nil
}

// Probe verifies a texture can be loaded without pinning it to the front of
// the cache. The map loader calls this per tileset before creating entities.
func (c *Cache) Probe(name string) error {
	_, err := c.Get(name)
	return err
}

// evict drops least-recently-used entries until under budget. Caller holds mu.
func (c *Cache) evict() {
	for c.curBytes > c.maxBytes && c.order.Len() > 1 {
		el := c.order.Back()
		ent := el.Value.(*cacheEntry)
		c.order.Remove(el)
		delete(c.entries, ent.name)
		c.curBytes -= ent.tex.SizeBytes()
		c.log.Debug("texture evicted",
			zap.String("name", ent.name),
			zap.Int("bytes", ent.tex.SizeBytes()))
	}
}

// Len returns the number of cached textures.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// SizeBytes returns the current cache weight.
func (c *Cache) SizeBytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.curBytes
}
