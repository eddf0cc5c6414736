package system

import (
	"time"

	"github.com/pokerune/engine/internal/core/ecs"
	coresys "github.com/pokerune/engine/internal/core/system"
)

// CleanupSystem runs last each tick and destroys every entity queued for
// removal during the frame, so no earlier phase ever sees a half-dead entity.
type CleanupSystem struct {
	world *ecs.World
}

func NewCleanupSystem(world *ecs.World) *CleanupSystem {
	return &CleanupSystem{world: world}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.world.FlushDestroyQueue()
}
