package ecs

// Batch creates many entities sharing one target archetype in a single pass.
// Storage is pre-sized exactly once per call and the new rows are contiguous
// in the backing archetype, which keeps later iteration cache-friendly.
//
// Creation is all-or-nothing: if the per-index fill function fails, every
// entity the call produced is unwound and a BulkCreateError is returned.

// Batch1 targets the archetype {A}.
type Batch1[A any] struct {
	w    *World
	arch *archetype
	idA  uint8
}

func NewBatch1[A any](w *World) *Batch1[A] {
	idA := typeID[A](w)
	var m mask
	m.set(idA)
	return &Batch1[A]{w: w, arch: w.getOrCreateArchetype(m), idA: idA}
}

func (b *Batch1[A]) CreateEntities(count int, fill func(i int, a *A) error) ([]EntityID, error) {
	start, ents := beginBatch(b.w, b.arch, count)
	if count <= 0 {
		return nil, nil
	}
	colA := b.arch.columns[b.idA].(*col[A])
	for i := 0; i < count; i++ {
		if err := fill(i, &colA.data[start+i]); err != nil {
			unwindBatch(b.w, b.arch, start, ents)
			return nil, &BulkCreateError{Requested: count, Created: i, Cause: err}
		}
	}
	return ents, nil
}

// Batch2 targets the archetype {A, B}.
type Batch2[A, B any] struct {
	w        *World
	arch     *archetype
	idA, idB uint8
}

func NewBatch2[A, B any](w *World) *Batch2[A, B] {
	idA := typeID[A](w)
	idB := typeID[B](w)
	var m mask
	m.set(idA)
	m.set(idB)
	return &Batch2[A, B]{w: w, arch: w.getOrCreateArchetype(m), idA: idA, idB: idB}
}

func (b *Batch2[A, B]) CreateEntities(count int, fill func(i int, a *A, bb *B) error) ([]EntityID, error) {
	start, ents := beginBatch(b.w, b.arch, count)
	if count <= 0 {
		return nil, nil
	}
	colA := b.arch.columns[b.idA].(*col[A])
	colB := b.arch.columns[b.idB].(*col[B])
	for i := 0; i < count; i++ {
		if err := fill(i, &colA.data[start+i], &colB.data[start+i]); err != nil {
			unwindBatch(b.w, b.arch, start, ents)
			return nil, &BulkCreateError{Requested: count, Created: i, Cause: err}
		}
	}
	return ents, nil
}

// Batch3 targets the archetype {A, B, C}.
type Batch3[A, B, C any] struct {
	w             *World
	arch          *archetype
	idA, idB, idC uint8
}

func NewBatch3[A, B, C any](w *World) *Batch3[A, B, C] {
	idA := typeID[A](w)
	idB := typeID[B](w)
	idC := typeID[C](w)
	var m mask
	m.set(idA)
	m.set(idB)
	m.set(idC)
	return &Batch3[A, B, C]{w: w, arch: w.getOrCreateArchetype(m), idA: idA, idB: idB, idC: idC}
}

func (b *Batch3[A, B, C]) CreateEntities(count int, fill func(i int, a *A, bb *B, c *C) error) ([]EntityID, error) {
	start, ents := beginBatch(b.w, b.arch, count)
	if count <= 0 {
		return nil, nil
	}
	colA := b.arch.columns[b.idA].(*col[A])
	colB := b.arch.columns[b.idB].(*col[B])
	colC := b.arch.columns[b.idC].(*col[C])
	for i := 0; i < count; i++ {
		if err := fill(i, &colA.data[start+i], &colB.data[start+i], &colC.data[start+i]); err != nil {
			unwindBatch(b.w, b.arch, start, ents)
			return nil, &BulkCreateError{Requested: count, Created: i, Cause: err}
		}
	}
	return ents, nil
}

// beginBatch extends every column and the entity list once, allocates IDs
// and metas, and returns the first new row index plus the new entities.
func beginBatch(w *World, a *archetype, count int) (int, []EntityID) {
	if count <= 0 {
		return 0, nil
	}
	start := len(a.entities)
	for _, id := range a.compIDs {
		a.columns[id].extend(count)
	}
	ents := make([]EntityID, count)
	for i := 0; i < count; i++ {
		idx := w.allocIndex()
		meta := &w.metas[idx]
		e := NewEntityID(idx, meta.gen)
		meta.arch = int32(a.index)
		meta.row = int32(start + i)
		a.entities = append(a.entities, e)
		ents[i] = e
	}
	w.liveCount += count
	return start, ents
}

// unwindBatch reverts a failed batch: rows are truncated away in one shot
// (they are the archetype's tail, so no swap fixups are needed) and the
// entity indices go back on the free list with a bumped generation.
func unwindBatch(w *World, a *archetype, start int, ents []EntityID) {
	for _, id := range a.compIDs {
		a.columns[id].truncate(start)
	}
	a.entities = a.entities[:start]
	for _, e := range ents {
		meta := &w.metas[e.Index()]
		meta.arch = -1
		meta.row = -1
		meta.gen++
		w.free = append(w.free, e.Index())
	}
	w.liveCount -= len(ents)
}
