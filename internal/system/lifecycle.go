package system

import (
	"time"

	coresys "github.com/pokerune/engine/internal/core/system"
	"github.com/pokerune/engine/internal/world"
)

// LifecycleSystem applies queued map unloads after movement and animation
// have run, so no system loses entities mid-pass. Phase 3 (Spatial).
type LifecycleSystem struct {
	maps *world.Maps
}

func NewLifecycleSystem(maps *world.Maps) *LifecycleSystem {
	return &LifecycleSystem{maps: maps}
}

func (s *LifecycleSystem) Phase() coresys.Phase { return coresys.PhaseSpatial }

func (s *LifecycleSystem) Update(_ time.Duration) {
	s.maps.ProcessUnloads()
}
