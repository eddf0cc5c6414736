package system

import (
	"time"

	"github.com/pokerune/engine/internal/component"
	"github.com/pokerune/engine/internal/core/ecs"
	coresys "github.com/pokerune/engine/internal/core/system"
	"github.com/pokerune/engine/internal/world"
)

// TileAnimationSystem cycles animated map tiles. TileSprite.GID stays the
// base gid the tile was placed with; only Local moves along the frame
// sequence, so the sequence lookup stays stable. Tile animations always
// loop. Phase 2 (Animation).
type TileAnimationSystem struct {
	world *ecs.World
	maps  *world.Maps
}

func NewTileAnimationSystem(w *ecs.World, maps *world.Maps) *TileAnimationSystem {
	return &TileAnimationSystem{world: w, maps: maps}
}

func (s *TileAnimationSystem) Phase() coresys.Phase { return coresys.PhaseAnimation }

func (s *TileAnimationSystem) Update(dt time.Duration) {
	step := dt.Seconds()
	ecs.Each3(s.world, func(_ ecs.EntityID, pos *component.Position, spr *component.TileSprite, at *component.AnimatedTile) {
		frames := s.maps.TileFrames(pos.MapID, spr.GID)
		if len(frames) == 0 {
			return
		}
		if at.Frame >= len(frames) {
			at.Frame = 0
		}
		at.FrameTimer += step
		for at.FrameTimer >= frameDuration(frames[at.Frame].DurationMS) {
			at.FrameTimer -= frameDuration(frames[at.Frame].DurationMS)
			at.Frame = (at.Frame + 1) % len(frames)
		}
		spr.Local = frames[at.Frame].TileID
	})
}

func frameDuration(ms int) float64 {
	return float64(ms) / 1000.0
}
