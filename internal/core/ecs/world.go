package ecs

import (
	"fmt"
	"reflect"
)

// MaxComponentTypes is the fixed cap on distinct component types per World.
const MaxComponentTypes = 256

// World is the top-level ECS container: archetype-based component storage
// with generational entity IDs. All mutation happens on the single game-loop
// goroutine; the embedded query cache alone is safe for concurrent reads.
type World struct {
	compTypes  map[reflect.Type]uint8
	makers     [MaxComponentTypes]func() column
	typeNames  [MaxComponentTypes]string
	nextCompID int

	archetypes  []*archetype
	maskToArch  map[mask]int
	archVersion uint32

	metas []entityMeta
	free  []uint32

	queries queryCache

	destroyQueue []EntityID
	liveCount    int
}

// NewWorld creates a World pre-sized for initialCapacity entities.
func NewWorld(initialCapacity int) *World {
	if initialCapacity < 0 {
		initialCapacity = 0
	}
	// Index 0 stays reserved so the zero EntityID never names a live entity.
	w := &World{
		compTypes:  make(map[reflect.Type]uint8, 32),
		maskToArch: make(map[mask]int, 16),
		archetypes: make([]*archetype, 0, 16),
		metas:      make([]entityMeta, initialCapacity+1),
		free:       make([]uint32, initialCapacity),
	}
	for i := range w.metas {
		w.metas[i].arch = -1
	}
	for i := range w.free {
		w.free[i] = uint32(initialCapacity - i)
	}
	w.queries.init()
	// Pre-create the empty archetype so Create never misses.
	w.getOrCreateArchetype(mask{})
	return w
}

// typeID registers (or fetches) the component ID for T.
func typeID[T any](w *World) uint8 {
	t := reflect.TypeFor[T]()
	if id, ok := w.compTypes[t]; ok {
		return id
	}
	if w.nextCompID >= MaxComponentTypes {
		panic(fmt.Sprintf("ecs: too many component types (max %d)", MaxComponentTypes))
	}
	id := uint8(w.nextCompID)
	w.nextCompID++
	w.compTypes[t] = id
	w.makers[id] = func() column { return &col[T]{} }
	w.typeNames[id] = t.String()
	return id
}

func (w *World) getOrCreateArchetype(m mask) *archetype {
	if idx, ok := w.maskToArch[m]; ok {
		return w.archetypes[idx]
	}
	a := &archetype{
		mask:  m,
		index: len(w.archetypes),
	}
	for bit := 0; bit < w.nextCompID; bit++ {
		id := uint8(bit)
		if m.containsBit(id) {
			a.compIDs = append(a.compIDs, id)
			a.columns[id] = w.makers[id]()
		}
	}
	w.archetypes = append(w.archetypes, a)
	w.maskToArch[m] = a.index
	w.archVersion++
	return a
}

// allocIndex pops a recycled entity index or grows the meta table.
func (w *World) allocIndex() uint32 {
	if n := len(w.free); n > 0 {
		idx := w.free[n-1]
		w.free = w.free[:n-1]
		return idx
	}
	idx := uint32(len(w.metas))
	w.metas = append(w.metas, entityMeta{arch: -1})
	return idx
}

// placeIn appends an entity row to the archetype. Column cells for a freshly
// placed entity are zero values; callers fill them afterwards.
func (w *World) placeIn(a *archetype, idx uint32) EntityID {
	meta := &w.metas[idx]
	e := NewEntityID(idx, meta.gen)
	for _, id := range a.compIDs {
		a.columns[id].appendZero()
	}
	a.entities = append(a.entities, e)
	meta.arch = int32(a.index)
	meta.row = int32(len(a.entities) - 1)
	w.liveCount++
	return e
}

// Create allocates a new entity with no components.
func (w *World) Create() EntityID {
	return w.placeIn(w.archetypes[w.maskToArch[mask{}]], w.allocIndex())
}

// Alive reports whether the entity is still live (generation matches).
func (w *World) Alive(e EntityID) bool {
	idx := e.Index()
	if int(idx) >= len(w.metas) {
		return false
	}
	m := &w.metas[idx]
	return m.arch >= 0 && m.gen == e.Generation()
}

func (w *World) meta(e EntityID) (*entityMeta, bool) {
	idx := e.Index()
	if int(idx) >= len(w.metas) {
		return nil, false
	}
	m := &w.metas[idx]
	if m.arch < 0 || m.gen != e.Generation() {
		return nil, false
	}
	return m, true
}

// removeRow swap-removes one row from an archetype and fixes up the meta of
// the entity that was moved into the vacated slot.
func (w *World) removeRow(a *archetype, row int) {
	last := len(a.entities) - 1
	if row < last {
		moved := a.entities[last]
		a.entities[row] = moved
		w.metas[moved.Index()].row = int32(row)
	}
	a.entities = a.entities[:last]
	for _, id := range a.compIDs {
		a.columns[id].swapRemove(row)
	}
}

// Destroy removes an entity and all its components immediately. Prefer
// QueueDestroy from inside system passes; destroying mid-iteration
// invalidates in-flight row pointers.
func (w *World) Destroy(e EntityID) {
	m, ok := w.meta(e)
	if !ok {
		return
	}
	w.removeRow(w.archetypes[m.arch], int(m.row))
	m.arch = -1
	m.row = -1
	m.gen++
	w.free = append(w.free, e.Index())
	w.liveCount--
}

// QueueDestroy queues an entity for end-of-frame cleanup.
func (w *World) QueueDestroy(e EntityID) {
	w.destroyQueue = append(w.destroyQueue, e)
}

// FlushDestroyQueue destroys all queued entities. Called by CleanupSystem at
// the end of each frame.
func (w *World) FlushDestroyQueue() {
	for _, e := range w.destroyQueue {
		w.Destroy(e)
	}
	w.destroyQueue = w.destroyQueue[:0]
}

// Count returns the number of live entities.
func (w *World) Count() int { return w.liveCount }

// migrate moves an entity's row to dst, carrying over every component both
// archetypes share and zero-filling the rest.
func (w *World) migrate(e EntityID, m *entityMeta, dst *archetype) {
	src := w.archetypes[m.arch]
	row := int(m.row)
	for _, id := range dst.compIDs {
		if src.mask.containsBit(id) {
			dst.columns[id].appendFrom(src.columns[id], row)
		} else {
			dst.columns[id].appendZero()
		}
	}
	dst.entities = append(dst.entities, e)
	w.removeRow(src, row)
	m.arch = int32(dst.index)
	m.row = int32(len(dst.entities) - 1)
}
