package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput     Phase = iota // 0: drain input, translate to intents
	PhaseMovement               // 1: grid movement + collision
	PhaseAnimation              // 2: sprite and tile frame advance
	PhaseSpatial                // 3: index maintenance, queued map unloads
	PhaseRender                 // 4: build draw lists
	PhaseCleanup                // 5: destroy queued entities

	phaseCount = int(PhaseCleanup) + 1
)

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
