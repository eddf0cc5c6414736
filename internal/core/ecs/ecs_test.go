package ecs

import (
	"errors"
	"testing"
)

type testPos struct {
	X, Y int32
}

type testVel struct {
	DX, DY float64
}

type testTag struct {
	ID int
}

func TestCreateAndSetGet(t *testing.T) {
	w := NewWorld(16)
	e := w.Create()

	if !w.Alive(e) {
		t.Fatal("freshly created entity should be alive")
	}
	if !Set(w, e, testPos{X: 3, Y: 7}) {
		t.Fatal("Set on live entity failed")
	}
	got, err := Get[testPos](w, e)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.X != 3 || got.Y != 7 {
		t.Fatalf("got %+v, want {3 7}", got)
	}
}

// Get hands out a copy: mutating it must not touch storage until Set.
func TestGetReturnsValueCopy(t *testing.T) {
	w := NewWorld(16)
	e := w.Create()
	Set(w, e, testPos{X: 1})

	copy1, _ := Get[testPos](w, e)
	copy1.X = 99

	stored, _ := Get[testPos](w, e)
	if stored.X != 1 {
		t.Fatalf("mutating a Get copy leaked into storage: %+v", stored)
	}

	// Explicit write-back persists.
	Set(w, e, copy1)
	stored, _ = Get[testPos](w, e)
	if stored.X != 99 {
		t.Fatalf("Set did not persist: %+v", stored)
	}
}

func TestGetRefWritesInPlace(t *testing.T) {
	w := NewWorld(16)
	e := w.Create()
	Set(w, e, testPos{X: 5})

	ref, err := GetRef[testPos](w, e)
	if err != nil {
		t.Fatalf("GetRef: %v", err)
	}
	ref.X = 42

	stored, _ := Get[testPos](w, e)
	if stored.X != 42 {
		t.Fatalf("GetRef mutation not visible in storage: %+v", stored)
	}
}

func TestGetMissingComponent(t *testing.T) {
	w := NewWorld(16)
	e := w.Create()

	_, err := Get[testVel](w, e)
	if !errors.Is(err, ErrComponentNotFound) {
		t.Fatalf("want ErrComponentNotFound, got %v", err)
	}
	if _, ok := TryGet[testVel](w, e); ok {
		t.Fatal("TryGet reported a component the entity does not have")
	}
}

func TestAddRemoveMigration(t *testing.T) {
	w := NewWorld(16)
	e := w.Create()
	Set(w, e, testPos{X: 1, Y: 2})
	Set(w, e, testVel{DX: 0.5})

	// Survives the archetype move.
	p, _ := Get[testPos](w, e)
	if p.X != 1 || p.Y != 2 {
		t.Fatalf("position lost in migration: %+v", p)
	}

	if !Remove[testVel](w, e) {
		t.Fatal("Remove on live entity failed")
	}
	if Has[testVel](w, e) {
		t.Fatal("component still present after Remove")
	}
	p, _ = Get[testPos](w, e)
	if p.X != 1 {
		t.Fatalf("position lost in remove migration: %+v", p)
	}
}

func TestDestroyInvalidatesStaleRefs(t *testing.T) {
	w := NewWorld(4)
	e := w.Create()
	Set(w, e, testPos{X: 1})
	w.Destroy(e)

	if w.Alive(e) {
		t.Fatal("destroyed entity reported alive")
	}
	if _, ok := TryGet[testPos](w, e); ok {
		t.Fatal("TryGet succeeded on destroyed entity")
	}

	// Index gets recycled with a new generation; the stale ID must not
	// resolve to the new entity's data.
	e2 := w.Create()
	Set(w, e2, testPos{X: 77})
	if e2.Index() == e.Index() && w.Alive(e) {
		t.Fatal("stale entity ID resolves after index reuse")
	}
}

func TestQueueDestroyFlush(t *testing.T) {
	w := NewWorld(8)
	a := w.Create()
	b := w.Create()
	w.QueueDestroy(a)
	if !w.Alive(a) {
		t.Fatal("queued entity destroyed before flush")
	}
	w.FlushDestroyQueue()
	if w.Alive(a) || !w.Alive(b) {
		t.Fatal("flush destroyed the wrong entities")
	}
	if w.Count() != 1 {
		t.Fatalf("Count = %d, want 1", w.Count())
	}
}

func TestBatchCreateContiguous(t *testing.T) {
	w := NewWorld(8)
	batch := NewBatch2[testPos, testVel](w)

	ents, err := batch.CreateEntities(100, func(i int, p *testPos, v *testVel) error {
		p.X = int32(i)
		v.DX = float64(i)
		return nil
	})
	if err != nil {
		t.Fatalf("CreateEntities: %v", err)
	}
	if len(ents) != 100 {
		t.Fatalf("created %d entities, want 100", len(ents))
	}
	for i, e := range ents {
		p, _ := Get[testPos](w, e)
		if p.X != int32(i) {
			t.Fatalf("entity %d has X=%d", i, p.X)
		}
	}
	if w.Count() != 100 {
		t.Fatalf("Count = %d, want 100", w.Count())
	}
}

func TestBatch1SingleComponent(t *testing.T) {
	w := NewWorld(8)
	batch := NewBatch1[testPos](w)

	ents, err := batch.CreateEntities(20, func(i int, p *testPos) error {
		p.X = int32(i * 2)
		return nil
	})
	if err != nil {
		t.Fatalf("CreateEntities: %v", err)
	}
	for i, e := range ents {
		p, _ := Get[testPos](w, e)
		if p.X != int32(i*2) {
			t.Fatalf("entity %d has X=%d", i, p.X)
		}
	}

	// Migrating one entity out of the batch archetype leaves the rest intact.
	if v, ok := Add[testVel](w, ents[3]); !ok {
		t.Fatal("Add failed")
	} else {
		v.DX = 1
	}
	for i, e := range ents {
		p, _ := Get[testPos](w, e)
		if p.X != int32(i*2) {
			t.Fatalf("entity %d lost X after migration: %d", i, p.X)
		}
	}
	if w.Count() != 20 {
		t.Fatalf("Count = %d, want 20", w.Count())
	}
}

func TestBatchCreateAtomicity(t *testing.T) {
	w := NewWorld(8)
	batch := NewBatch2[testPos, testVel](w)

	injected := errors.New("injected failure")
	_, err := batch.CreateEntities(50, func(i int, p *testPos, v *testVel) error {
		if i == 37 {
			return injected
		}
		p.X = int32(i)
		return nil
	})
	if !errors.Is(err, ErrBulkCreateFailed) {
		t.Fatalf("want ErrBulkCreateFailed, got %v", err)
	}
	if !errors.Is(err, injected) {
		t.Fatalf("cause not wrapped: %v", err)
	}
	var bce *BulkCreateError
	if !errors.As(err, &bce) {
		t.Fatalf("error is not *BulkCreateError: %v", err)
	}
	if bce.Requested != 50 || bce.Created != 37 {
		t.Fatalf("got Requested=%d Created=%d", bce.Requested, bce.Created)
	}

	// Zero entities reachable by query.
	if w.Count() != 0 {
		t.Fatalf("Count = %d after rollback, want 0", w.Count())
	}
	found := 0
	Each1(w, func(EntityID, *testPos) { found++ })
	if found != 0 {
		t.Fatalf("%d entities reachable by query after rollback", found)
	}

	// The batch and world stay usable after the rollback.
	ents, err := batch.CreateEntities(10, func(i int, p *testPos, v *testVel) error { return nil })
	if err != nil || len(ents) != 10 {
		t.Fatalf("batch unusable after rollback: %v", err)
	}
}

func TestViewFiltering(t *testing.T) {
	w := NewWorld(16)
	both := w.Create()
	Set(w, both, testPos{X: 1})
	Set(w, both, testVel{DX: 1})

	posOnly := w.Create()
	Set(w, posOnly, testPos{X: 2})

	tagged := w.Create()
	Set(w, tagged, testPos{X: 3})
	Set(w, tagged, testTag{ID: 9})

	count := 0
	Each2(w, func(e EntityID, p *testPos, v *testVel) {
		count++
		if e != both {
			t.Fatalf("unexpected entity in Pos+Vel view")
		}
	})
	if count != 1 {
		t.Fatalf("Pos+Vel matched %d entities, want 1", count)
	}

	// Exclusion: all Pos entities without the tag.
	seen := map[EntityID]bool{}
	Each1(w, func(e EntityID, p *testPos) { seen[e] = true }, Without[testTag]())
	if len(seen) != 2 || seen[tagged] {
		t.Fatalf("Without filter wrong: %v", seen)
	}
}

func TestViewSeesNewArchetypes(t *testing.T) {
	w := NewWorld(16)
	v := NewView1[testPos](w)
	for v.Next() {
		t.Fatal("empty world yielded an entity")
	}

	e := w.Create()
	Set(w, e, testPos{X: 1})
	Set(w, e, testTag{ID: 1}) // new archetype after the view was built

	v.Reset()
	found := false
	for v.Next() {
		found = true
	}
	if !found {
		t.Fatal("view missed entity in archetype created after construction")
	}
}

func TestQueryCacheReuse(t *testing.T) {
	w := NewWorld(16)
	var include, exclude mask
	include.set(typeID[testPos](w))
	q1 := w.queries.get(w, include, exclude)
	q2 := w.queries.get(w, include, exclude)
	if q1 != q2 {
		t.Fatal("query cache returned distinct descriptors for one mask pair")
	}
}

func BenchmarkViewIteration(b *testing.B) {
	w := NewWorld(10000)
	batch := NewBatch2[testPos, testVel](w)
	batch.CreateEntities(10000, func(i int, p *testPos, v *testVel) error {
		p.X = int32(i)
		return nil
	})
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		v := NewView2[testPos, testVel](w)
		for v.Next() {
			p, vel := v.Get()
			vel.DX = float64(p.X)
		}
	}
}
