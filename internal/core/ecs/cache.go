package ecs

import "sync"

// cachedQuery is an immutable filter descriptor plus its lazily refreshed
// list of matching archetypes. Descriptors live for the world's lifetime and
// are never invalidated, only refreshed when new archetypes appear.
type cachedQuery struct {
	include  mask
	exclude  mask
	matching []*archetype
	seen     uint32 // archVersion the matching list was built against
}

func (q *cachedQuery) refresh(w *World) {
	if q.seen == w.archVersion {
		return
	}
	q.matching = q.matching[:0]
	for _, a := range w.archetypes {
		if a.mask.containsAll(q.include) && !a.mask.intersects(q.exclude) {
			q.matching = append(q.matching, a)
		}
	}
	q.seen = w.archVersion
}

type queryKey struct {
	include mask
	exclude mask
}

// queryCache memoizes filter descriptors by their mask pair so per-frame
// view construction does not rebuild filter state. Reads may happen
// concurrently; writes only occur the first time a filter shape is seen.
type queryCache struct {
	mu      sync.RWMutex
	queries map[queryKey]*cachedQuery
}

func (c *queryCache) init() {
	c.queries = make(map[queryKey]*cachedQuery, 16)
}

func (c *queryCache) get(w *World, include, exclude mask) *cachedQuery {
	key := queryKey{include: include, exclude: exclude}
	c.mu.RLock()
	q, ok := c.queries[key]
	c.mu.RUnlock()
	if ok {
		return q
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if q, ok = c.queries[key]; ok {
		return q
	}
	q = &cachedQuery{include: include, exclude: exclude, seen: ^uint32(0)}
	q.refresh(w)
	c.queries[key] = q
	return q
}
