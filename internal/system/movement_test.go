package system

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pokerune/engine/internal/component"
	"github.com/pokerune/engine/internal/core/ecs"
	"github.com/pokerune/engine/internal/core/event"
	"github.com/pokerune/engine/internal/world"
)

type moveEnv struct {
	world *ecs.World
	maps  *world.Maps
	bus   *event.Bus
	sys   *MovementSystem
}

// newMoveEnv registers a 10x10 map with 16px tiles and a wall at (5,4).
func newMoveEnv(t *testing.T) *moveEnv {
	t.Helper()
	w := ecs.NewWorld(64)
	idx := world.NewIndex()
	bus := event.NewBus()
	maps := world.NewMaps(w, idx, bus, zap.NewNop())
	maps.Register(&world.LoadedMap{
		Info: component.MapInfo{ID: 1, Name: "arena", Width: 10, Height: 10, TileSize: 16},
	})
	wall := w.Create()
	idx.Add(1, 5, 4, wall, true)
	return &moveEnv{
		world: w,
		maps:  maps,
		bus:   bus,
		sys:   NewMovementSystem(w, maps, bus, zap.NewNop()),
	}
}

func (e *moveEnv) spawnWalker(x, y int32, speed float64) ecs.EntityID {
	ent := e.world.Create()
	ecs.Set(e.world, ent, component.Position{MapID: 1, TileX: x, TileY: y})
	ecs.Set(e.world, ent, component.GridMovement{
		StartX: x, StartY: y, TargetX: x, TargetY: y,
		Speed: speed, Facing: component.DirSouth,
	})
	e.maps.Index().Add(1, x, y, ent, true)
	return ent
}

func TestMoveIntentStartsMovement(t *testing.T) {
	e := newMoveEnv(t)
	ent := e.spawnWalker(2, 2, 32) // 32 px/s over 16px tiles = 0.5s per step

	ecs.Set(e.world, ent, component.MoveIntent{Direction: component.DirEast})
	e.sys.Update(100 * time.Millisecond)

	mv, _ := ecs.Get[component.GridMovement](e.world, ent)
	if !mv.IsMoving || mv.TargetX != 3 || mv.TargetY != 2 {
		t.Fatalf("movement state = %+v, want moving toward (3,2)", mv)
	}
	if mv.Facing != component.DirEast {
		t.Fatalf("facing = %v, want east", mv.Facing)
	}
	if ecs.Has[component.MoveIntent](e.world, ent) {
		t.Fatal("intent not consumed")
	}
	// Target tile is reserved immediately.
	if !e.maps.Index().Blocked(1, 3, 2) {
		t.Fatal("target tile not reserved")
	}
	if e.maps.Index().Blocked(1, 2, 2) {
		t.Fatal("origin tile still reserved")
	}
}

func TestRejectedMoveTurnsFacingOnly(t *testing.T) {
	e := newMoveEnv(t)
	ent := e.spawnWalker(5, 5, 32) // wall at (5,4) blocks north

	ecs.Set(e.world, ent, component.MoveIntent{Direction: component.DirNorth})
	e.sys.Update(100 * time.Millisecond)

	mv, _ := ecs.Get[component.GridMovement](e.world, ent)
	if mv.IsMoving {
		t.Fatal("moved into a blocked tile")
	}
	if mv.Facing != component.DirNorth {
		t.Fatalf("facing = %v, want north even when blocked", mv.Facing)
	}
	pos, _ := ecs.Get[component.Position](e.world, ent)
	if pos.TileX != 5 || pos.TileY != 5 {
		t.Fatalf("position moved to (%d,%d)", pos.TileX, pos.TileY)
	}
}

func TestEdgeOfMapRejected(t *testing.T) {
	e := newMoveEnv(t)
	ent := e.spawnWalker(0, 0, 32)

	ecs.Set(e.world, ent, component.MoveIntent{Direction: component.DirNorth})
	e.sys.Update(100 * time.Millisecond)

	mv, _ := ecs.Get[component.GridMovement](e.world, ent)
	if mv.IsMoving {
		t.Fatal("stepped off the top edge")
	}
}

func TestProgressMonotonicAndCompletes(t *testing.T) {
	e := newMoveEnv(t)
	ent := e.spawnWalker(2, 2, 32) // 0.5s per 16px step

	var completed []event.MovementCompleted
	event.Subscribe(e.bus, func(ev event.MovementCompleted) { completed = append(completed, ev) })

	ecs.Set(e.world, ent, component.MoveIntent{Direction: component.DirSouth})

	last := -1.0
	for i := 0; i < 4; i++ { // 4 × 150ms = 0.6s > 0.5s
		e.sys.Update(150 * time.Millisecond)
		mv, _ := ecs.Get[component.GridMovement](e.world, ent)
		if mv.IsMoving {
			if mv.Progress <= last {
				t.Fatalf("progress not monotonic: %v after %v", mv.Progress, last)
			}
			last = mv.Progress
		}
	}
	e.bus.BeginFrame()

	pos, _ := ecs.Get[component.Position](e.world, ent)
	mv, _ := ecs.Get[component.GridMovement](e.world, ent)
	if mv.IsMoving {
		t.Fatal("move did not complete in 0.6s")
	}
	if pos.TileX != 2 || pos.TileY != 3 {
		t.Fatalf("position = (%d,%d), want (2,3)", pos.TileX, pos.TileY)
	}
	if pos.OffsetX != 0 || pos.OffsetY != 0 {
		t.Fatalf("render offset not reset: (%v,%v)", pos.OffsetX, pos.OffsetY)
	}
	if len(completed) != 1 || completed[0].TileY != 3 {
		t.Fatalf("MovementCompleted events = %+v", completed)
	}
}

func TestWalkAnimationFollowsState(t *testing.T) {
	e := newMoveEnv(t)
	ent := e.spawnWalker(2, 2, 160) // 0.1s per step
	ecs.Set(e.world, ent, component.SpriteAnimation{})

	ecs.Set(e.world, ent, component.MoveIntent{Direction: component.DirSouth})
	e.sys.Update(50 * time.Millisecond)

	anim, _ := ecs.Get[component.SpriteAnimation](e.world, ent)
	if anim.Current != "walk_south" {
		t.Fatalf("animation = %q, want walk_south", anim.Current)
	}

	e.sys.Update(100 * time.Millisecond)
	anim, _ = ecs.Get[component.SpriteAnimation](e.world, ent)
	if anim.Current != "idle_south" {
		t.Fatalf("animation after arrival = %q, want idle_south", anim.Current)
	}
}

func TestSpritelessMoverStillAdvances(t *testing.T) {
	e := newMoveEnv(t)
	trigger := e.spawnWalker(7, 7, 160) // no sprite, 0.1s per step
	walker := e.spawnWalker(2, 2, 32)   // 0.5s per step
	ecs.Set(e.world, walker, component.SpriteAnimation{})

	ecs.Set(e.world, trigger, component.MoveIntent{Direction: component.DirEast})
	ecs.Set(e.world, walker, component.MoveIntent{Direction: component.DirEast})
	e.sys.Update(250 * time.Millisecond)

	pos, _ := ecs.Get[component.Position](e.world, trigger)
	if pos.TileX != 8 || pos.TileY != 7 {
		t.Fatalf("spriteless mover at (%d,%d), want (8,7)", pos.TileX, pos.TileY)
	}

	// A sprited mover runs through exactly one pass: 250ms at 0.5s per step
	// is half a tile, not a full one.
	mv, _ := ecs.Get[component.GridMovement](e.world, walker)
	if !mv.IsMoving || mv.Progress != 0.5 {
		t.Fatalf("sprited mover progress = %v (moving=%v), want 0.5", mv.Progress, mv.IsMoving)
	}
}

func TestTwoEntitiesCannotShareTargetTile(t *testing.T) {
	e := newMoveEnv(t)
	a := e.spawnWalker(3, 3, 32)
	b := e.spawnWalker(5, 3, 32)

	// Both aim at (4,3); whichever is processed first reserves it.
	ecs.Set(e.world, a, component.MoveIntent{Direction: component.DirEast})
	ecs.Set(e.world, b, component.MoveIntent{Direction: component.DirWest})
	e.sys.Update(50 * time.Millisecond)

	mvA, _ := ecs.Get[component.GridMovement](e.world, a)
	mvB, _ := ecs.Get[component.GridMovement](e.world, b)
	moving := 0
	if mvA.IsMoving {
		moving++
	}
	if mvB.IsMoving {
		moving++
	}
	if moving != 1 {
		t.Fatalf("%d entities moving onto the same tile, want 1", moving)
	}
}
