package world

import (
	"go.uber.org/zap"

	"github.com/pokerune/engine/internal/component"
	"github.com/pokerune/engine/internal/core/ecs"
	"github.com/pokerune/engine/internal/core/event"
	"github.com/pokerune/engine/internal/data"
)

// LoadedMap is the bookkeeping record for one committed map: its metadata,
// its root entity, every entity the loader created for it, and the tile
// animation sequences keyed by base gid for the tile animation system.
type LoadedMap struct {
	Info       component.MapInfo
	Root       ecs.EntityID
	Entities   []ecs.EntityID
	Animations map[uint32][]data.TileFrame
}

// Maps owns map lifecycle: registration on load commit, walkability queries
// and unloading. Unload destroys the map's entities in bulk and purges its
// spatial index entries — nothing of the map stays reachable afterwards.
// Game-loop goroutine only.
type Maps struct {
	world *ecs.World
	index *Index
	bus   *event.Bus
	log   *zap.Logger

	loaded      map[component.MapID]*LoadedMap
	unloadQueue []component.MapID
}

func NewMaps(w *ecs.World, idx *Index, bus *event.Bus, log *zap.Logger) *Maps {
	return &Maps{
		world:  w,
		index:  idx,
		bus:    bus,
		log:    log,
		loaded: make(map[component.MapID]*LoadedMap, 4),
	}
}

// Index exposes the spatial index for systems needing occupancy queries.
func (m *Maps) Index() *Index { return m.index }

// Register records a committed map. Called by the loader after every entity
// and index entry is in place; replaces any stale record for the same ID.
func (m *Maps) Register(lm *LoadedMap) {
	m.loaded[lm.Info.ID] = lm
	event.Emit(m.bus, event.MapLoaded{
		MapID:    int16(lm.Info.ID),
		Name:     lm.Info.Name,
		Entities: len(lm.Entities),
	})
}

// Info returns a loaded map's metadata.
func (m *Maps) Info(mapID component.MapID) (component.MapInfo, bool) {
	lm, ok := m.loaded[mapID]
	if !ok {
		return component.MapInfo{}, false
	}
	return lm.Info, true
}

// TileFrames returns the animation sequence for a base gid on a loaded map,
// or nil when the gid is not animated.
func (m *Maps) TileFrames(mapID component.MapID, gid uint32) []data.TileFrame {
	lm, ok := m.loaded[mapID]
	if !ok {
		return nil
	}
	return lm.Animations[gid]
}

// Loaded reports whether a map is currently registered.
func (m *Maps) Loaded(mapID component.MapID) bool {
	_, ok := m.loaded[mapID]
	return ok
}

// Walkable reports whether (x,y) on the map can be stepped onto: inside the
// map extents and not occupied by a solid entity. Out-of-bounds coordinates
// are "not walkable", never an error.
func (m *Maps) Walkable(mapID component.MapID, x, y int32) bool {
	lm, ok := m.loaded[mapID]
	if !ok {
		return false
	}
	if x < 0 || x >= lm.Info.Width || y < 0 || y >= lm.Info.Height {
		return false
	}
	return !m.index.Blocked(mapID, x, y)
}

// Unload tears a map down immediately: every entity destroyed, every index
// entry purged. Safe to call for unknown IDs.
func (m *Maps) Unload(mapID component.MapID) {
	lm, ok := m.loaded[mapID]
	if !ok {
		return
	}
	for _, e := range lm.Entities {
		m.world.Destroy(e)
	}
	m.index.RemoveMap(mapID)
	delete(m.loaded, mapID)
	m.log.Info("map unloaded",
		zap.Int16("map", int16(mapID)),
		zap.Int("entities", len(lm.Entities)))
	event.Emit(m.bus, event.MapUnloaded{MapID: int16(mapID)})
}

// RequestUnload queues a map for teardown at the end of the frame, so
// systems never lose entities mid-pass.
func (m *Maps) RequestUnload(mapID component.MapID) {
	m.unloadQueue = append(m.unloadQueue, mapID)
}

// ProcessUnloads runs queued teardowns. Called by the lifecycle system in
// the spatial phase.
func (m *Maps) ProcessUnloads() {
	for _, id := range m.unloadQueue {
		m.Unload(id)
	}
	m.unloadQueue = m.unloadQueue[:0]
}
