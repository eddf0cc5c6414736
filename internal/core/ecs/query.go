package ecs

// QueryOption narrows a view's filter beyond its type parameters.
type QueryOption func(w *World, exclude *mask)

// Without excludes entities carrying component T from a view.
func Without[T any]() QueryOption {
	return func(w *World, exclude *mask) {
		exclude.set(typeID[T](w))
	}
}

// View1 iterates all entities that have component A (minus exclusions).
// Views resolve their descriptor through the world's query cache, so
// constructing one per frame does not rebuild filter state.
type View1[A any] struct {
	w    *World
	q    *cachedQuery
	idA  uint8
	colA *col[A]

	cur     *archetype
	archPos int
	row     int
	ent     EntityID
}

func NewView1[A any](w *World, opts ...QueryOption) *View1[A] {
	idA := typeID[A](w)
	var include, exclude mask
	include.set(idA)
	for _, opt := range opts {
		opt(w, &exclude)
	}
	v := &View1[A]{w: w, q: w.queries.get(w, include, exclude), idA: idA}
	v.Reset()
	return v
}

// Reset rewinds the view, picking up archetypes created since the last pass.
func (v *View1[A]) Reset() {
	v.q.refresh(v.w)
	v.archPos = 0
	v.row = -1
	v.cur = nil
}

func (v *View1[A]) Next() bool {
	v.row++
	if v.cur != nil && v.row < v.cur.size() {
		v.ent = v.cur.entities[v.row]
		return true
	}
	for v.archPos < len(v.q.matching) {
		a := v.q.matching[v.archPos]
		v.archPos++
		if a.size() == 0 {
			continue
		}
		v.cur = a
		v.colA = a.columns[v.idA].(*col[A])
		v.row = 0
		v.ent = a.entities[0]
		return true
	}
	return false
}

func (v *View1[A]) Entity() EntityID { return v.ent }
func (v *View1[A]) Get() *A          { return &v.colA.data[v.row] }

// View2 iterates all entities that have components A and B.
type View2[A, B any] struct {
	w        *World
	q        *cachedQuery
	idA, idB uint8
	colA     *col[A]
	colB     *col[B]

	cur     *archetype
	archPos int
	row     int
	ent     EntityID
}

func NewView2[A, B any](w *World, opts ...QueryOption) *View2[A, B] {
	idA := typeID[A](w)
	idB := typeID[B](w)
	var include, exclude mask
	include.set(idA)
	include.set(idB)
	for _, opt := range opts {
		opt(w, &exclude)
	}
	v := &View2[A, B]{w: w, q: w.queries.get(w, include, exclude), idA: idA, idB: idB}
	v.Reset()
	return v
}

func (v *View2[A, B]) Reset() {
	v.q.refresh(v.w)
	v.archPos = 0
	v.row = -1
	v.cur = nil
}

func (v *View2[A, B]) Next() bool {
	v.row++
	if v.cur != nil && v.row < v.cur.size() {
		v.ent = v.cur.entities[v.row]
		return true
	}
	for v.archPos < len(v.q.matching) {
		a := v.q.matching[v.archPos]
		v.archPos++
		if a.size() == 0 {
			continue
		}
		v.cur = a
		v.colA = a.columns[v.idA].(*col[A])
		v.colB = a.columns[v.idB].(*col[B])
		v.row = 0
		v.ent = a.entities[0]
		return true
	}
	return false
}

func (v *View2[A, B]) Entity() EntityID { return v.ent }
func (v *View2[A, B]) Get() (*A, *B) {
	return &v.colA.data[v.row], &v.colB.data[v.row]
}

// View3 iterates all entities that have components A, B and C.
type View3[A, B, C any] struct {
	w             *World
	q             *cachedQuery
	idA, idB, idC uint8
	colA          *col[A]
	colB          *col[B]
	colC          *col[C]

	cur     *archetype
	archPos int
	row     int
	ent     EntityID
}

func NewView3[A, B, C any](w *World, opts ...QueryOption) *View3[A, B, C] {
	idA := typeID[A](w)
	idB := typeID[B](w)
	idC := typeID[C](w)
	var include, exclude mask
	include.set(idA)
	include.set(idB)
	include.set(idC)
	for _, opt := range opts {
		opt(w, &exclude)
	}
	v := &View3[A, B, C]{w: w, q: w.queries.get(w, include, exclude), idA: idA, idB: idB, idC: idC}
	v.Reset()
	return v
}

func (v *View3[A, B, C]) Reset() {
	v.q.refresh(v.w)
	v.archPos = 0
	v.row = -1
	v.cur = nil
}

func (v *View3[A, B, C]) Next() bool {
	v.row++
	if v.cur != nil && v.row < v.cur.size() {
		v.ent = v.cur.entities[v.row]
		return true
	}
	for v.archPos < len(v.q.matching) {
		a := v.q.matching[v.archPos]
		v.archPos++
		if a.size() == 0 {
			continue
		}
		v.cur = a
		v.colA = a.columns[v.idA].(*col[A])
		v.colB = a.columns[v.idB].(*col[B])
		v.colC = a.columns[v.idC].(*col[C])
		v.row = 0
		v.ent = a.entities[0]
		return true
	}
	return false
}

func (v *View3[A, B, C]) Entity() EntityID { return v.ent }
func (v *View3[A, B, C]) Get() (*A, *B, *C) {
	return &v.colA.data[v.row], &v.colB.data[v.row], &v.colC.data[v.row]
}
