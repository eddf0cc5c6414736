package ecs

import "fmt"

// Get returns a value copy of the component T for the entity. Mutating the
// copy does NOT touch storage: callers must write back with Set. Systems
// that read-modify-write in one pass should use GetRef instead.
func Get[T any](w *World, e EntityID) (T, error) {
	ref, err := GetRef[T](w, e)
	if err != nil {
		var zero T
		return zero, err
	}
	return *ref, nil
}

// GetRef returns a pointer into component storage. The pointer stays valid
// only until the next structural mutation (Add/Remove/Destroy/batch create);
// do not retain it across frames.
func GetRef[T any](w *World, e EntityID) (*T, error) {
	m, ok := w.meta(e)
	if !ok {
		return nil, fmt.Errorf("%w: entity %d is not alive", ErrComponentNotFound, e.Index())
	}
	id := typeID[T](w)
	a := w.archetypes[m.arch]
	if !a.mask.containsBit(id) {
		return nil, fmt.Errorf("%w: %s on entity %d", ErrComponentNotFound, w.typeNames[id], e.Index())
	}
	return &a.columns[id].(*col[T]).data[m.row], nil
}

// TryGet is the non-failing variant of Get.
func TryGet[T any](w *World, e EntityID) (T, bool) {
	ref, err := GetRef[T](w, e)
	if err != nil {
		var zero T
		return zero, false
	}
	return *ref, true
}

// TryGetRef is the non-failing variant of GetRef.
func TryGetRef[T any](w *World, e EntityID) (*T, bool) {
	ref, err := GetRef[T](w, e)
	if err != nil {
		return nil, false
	}
	return ref, true
}

// Has reports whether the entity carries component T.
func Has[T any](w *World, e EntityID) bool {
	m, ok := w.meta(e)
	if !ok {
		return false
	}
	return w.archetypes[m.arch].mask.containsBit(typeID[T](w))
}

// Add attaches a zero-valued component T to the entity, migrating it to the
// matching archetype, and returns a pointer to the new cell. If the entity
// already has T the existing cell is returned. Returns false for dead
// entities.
func Add[T any](w *World, e EntityID) (*T, bool) {
	m, ok := w.meta(e)
	if !ok {
		return nil, false
	}
	id := typeID[T](w)
	src := w.archetypes[m.arch]
	if src.mask.containsBit(id) {
		return &src.columns[id].(*col[T]).data[m.row], true
	}
	dst := w.getOrCreateArchetype(src.mask.with(id))
	w.migrate(e, m, dst)
	return &dst.columns[id].(*col[T]).data[m.row], true
}

// Set writes the component value, attaching it first if absent.
// This is the mandatory write-back companion to Get.
func Set[T any](w *World, e EntityID, v T) bool {
	ref, ok := Add[T](w, e)
	if !ok {
		return false
	}
	*ref = v
	return true
}

// Remove detaches component T from the entity. Returns true if the entity is
// alive, whether or not it carried T.
func Remove[T any](w *World, e EntityID) bool {
	m, ok := w.meta(e)
	if !ok {
		return false
	}
	id := typeID[T](w)
	src := w.archetypes[m.arch]
	if !src.mask.containsBit(id) {
		return true
	}
	w.migrate(e, m, w.getOrCreateArchetype(src.mask.without(id)))
	return true
}

// Each1 invokes fn for every entity that has component A. Iteration order is
// unspecified but stable within one call.
func Each1[A any](w *World, fn func(e EntityID, a *A), opts ...QueryOption) {
	v := NewView1[A](w, opts...)
	for v.Next() {
		fn(v.Entity(), v.Get())
	}
}

// Each2 invokes fn for every entity that has both A and B.
func Each2[A, B any](w *World, fn func(e EntityID, a *A, b *B), opts ...QueryOption) {
	v := NewView2[A, B](w, opts...)
	for v.Next() {
		a, b := v.Get()
		fn(v.Entity(), a, b)
	}
}

// Each3 invokes fn for every entity that has A, B and C.
func Each3[A, B, C any](w *World, fn func(e EntityID, a *A, b *B, c *C), opts ...QueryOption) {
	v := NewView3[A, B, C](w, opts...)
	for v.Next() {
		a, b, c := v.Get()
		fn(v.Entity(), a, b, c)
	}
}
