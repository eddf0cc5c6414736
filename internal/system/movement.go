package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/pokerune/engine/internal/component"
	"github.com/pokerune/engine/internal/core/ecs"
	"github.com/pokerune/engine/internal/core/event"
	coresys "github.com/pokerune/engine/internal/core/system"
	"github.com/pokerune/engine/internal/world"
)

// MovementSystem runs the grid movement state machine. Idle entities consume
// a MoveIntent: the facing always turns, and if the target tile is walkable
// the entity transitions to Moving and its index entry shifts to the target
// tile immediately, reserving it. Moving entities advance Progress; on
// completion Position snaps to the target and the entity returns to idle.
// Phase 1 (Movement).
type MovementSystem struct {
	world *ecs.World
	maps  *world.Maps
	bus   *event.Bus
	log   *zap.Logger
}

func NewMovementSystem(w *ecs.World, maps *world.Maps, bus *event.Bus, log *zap.Logger) *MovementSystem {
	return &MovementSystem{world: w, maps: maps, bus: bus, log: log}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseMovement }

func (s *MovementSystem) Update(dt time.Duration) {
	s.consumeIntents()
	s.advance(dt.Seconds())
}

func (s *MovementSystem) consumeIntents() {
	idx := s.maps.Index()

	ecs.Each3(s.world, func(e ecs.EntityID, pos *component.Position, mv *component.GridMovement, in *component.MoveIntent) {
		if mv.IsMoving {
			return
		}
		mv.Facing = in.Direction
		tx := pos.TileX + in.Direction.DeltaX()
		ty := pos.TileY + in.Direction.DeltaY()
		if !s.maps.Walkable(pos.MapID, tx, ty) {
			return
		}
		mv.StartX, mv.StartY = pos.TileX, pos.TileY
		mv.TargetX, mv.TargetY = tx, ty
		mv.Progress = 0
		mv.IsMoving = true
		// Shift the index entry to the target immediately. This reserves the
		// tile, so a second entity aiming at it this tick sees it blocked.
		idx.Move(pos.MapID, pos.TileX, pos.TileY, tx, ty, e)
	})

	// Intent removal migrates archetypes, so it runs after the iteration pass.
	var consumed []ecs.EntityID
	ecs.Each1(s.world, func(e ecs.EntityID, _ *component.MoveIntent) {
		consumed = append(consumed, e)
	})
	for _, e := range consumed {
		ecs.Remove[component.MoveIntent](s.world, e)
	}
}

func (s *MovementSystem) advance(dt float64) {
	ecs.Each3(s.world, func(e ecs.EntityID, pos *component.Position, mv *component.GridMovement, anim *component.SpriteAnimation) {
		s.step(e, pos, mv, dt)
		if mv.IsMoving {
			anim.SetAnimation("walk_" + mv.Facing.String())
		} else {
			anim.SetAnimation("idle_" + mv.Facing.String())
		}
	})
	// Entities without a sprite (invisible triggers) still move.
	ecs.Each2(s.world, func(e ecs.EntityID, pos *component.Position, mv *component.GridMovement) {
		s.step(e, pos, mv, dt)
	}, ecs.Without[component.SpriteAnimation]())
}

func (s *MovementSystem) step(e ecs.EntityID, pos *component.Position, mv *component.GridMovement, dt float64) {
	if !mv.IsMoving {
		pos.OffsetX, pos.OffsetY = 0, 0
		return
	}

	info, ok := s.maps.Info(pos.MapID)
	if !ok {
		mv.IsMoving = false
		return
	}
	tilePx := float64(info.TileSize)
	if mv.Speed > 0 && tilePx > 0 {
		mv.Progress += mv.Speed * dt / tilePx
	} else {
		mv.Progress = 1
	}

	if mv.Progress >= 1 {
		pos.TileX, pos.TileY = mv.TargetX, mv.TargetY
		pos.OffsetX, pos.OffsetY = 0, 0
		mv.Progress = 0
		mv.IsMoving = false
		event.Emit(s.bus, event.MovementCompleted{
			Entity: e,
			MapID:  int16(pos.MapID),
			TileX:  pos.TileX,
			TileY:  pos.TileY,
		})
		return
	}

	// Render offset interpolates from the start tile toward the target.
	pos.OffsetX = float64(mv.TargetX-mv.StartX) * mv.Progress * tilePx
	pos.OffsetY = float64(mv.TargetY-mv.StartY) * mv.Progress * tilePx
}
