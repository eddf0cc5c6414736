package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/pokerune/engine/internal/component"
	"github.com/pokerune/engine/internal/core/ecs"
	"github.com/pokerune/engine/internal/core/event"
	coresys "github.com/pokerune/engine/internal/core/system"
	"github.com/pokerune/engine/internal/data"
)

// SpriteAnimationSystem advances every playing sprite animation. Looping
// animations wrap and rearm their frame events; non-looping ones clamp on
// the last frame and flag completion. Each frame's event fires exactly once
// per cycle, tracked in the TriggeredFrames bit-field. Phase 2 (Animation).
type SpriteAnimationSystem struct {
	world     *ecs.World
	manifests *data.ManifestCache
	bus       *event.Bus
	log       *zap.Logger

	// warned latches missing manifest/animation pairs so a bad reference
	// logs once, not once per frame.
	warned map[missingAnim]struct{}
}

type missingAnim struct {
	manifest component.ManifestID
	name     string
}

func NewSpriteAnimationSystem(w *ecs.World, manifests *data.ManifestCache, bus *event.Bus, log *zap.Logger) *SpriteAnimationSystem {
	return &SpriteAnimationSystem{
		world:     w,
		manifests: manifests,
		bus:       bus,
		log:       log,
		warned:    make(map[missingAnim]struct{}),
	}
}

func (s *SpriteAnimationSystem) Phase() coresys.Phase { return coresys.PhaseAnimation }

func (s *SpriteAnimationSystem) Update(dt time.Duration) {
	step := dt.Seconds()
	ecs.Each1(s.world, func(e ecs.EntityID, anim *component.SpriteAnimation) {
		if !anim.IsPlaying || anim.Current == "" {
			return
		}
		def, ok := s.manifests.Animation(anim.Manifest, anim.Current)
		if !ok {
			s.warnOnce(anim.Manifest, anim.Current)
			anim.IsPlaying = false
			return
		}
		s.advance(e, anim, def, step)
	})
}

func (s *SpriteAnimationSystem) advance(e ecs.EntityID, anim *component.SpriteAnimation, def *data.AnimationDef, dt float64) {
	if anim.Frame >= len(def.Frames) {
		// Animation shrank under us (asset reload); restart.
		anim.Frame = 0
		anim.FrameTimer = 0
		anim.TriggeredFrames = 0
	}

	s.fireFrameEvent(e, anim, def)

	anim.FrameTimer += dt
	for anim.FrameTimer >= def.Frames[anim.Frame].Duration() {
		anim.FrameTimer -= def.Frames[anim.Frame].Duration()

		if anim.Frame+1 < len(def.Frames) {
			anim.Frame++
			s.fireFrameEvent(e, anim, def)
			continue
		}
		if def.Loop {
			// Wrap rearms every frame event for the next cycle.
			anim.Frame = 0
			anim.TriggeredFrames = 0
			s.fireFrameEvent(e, anim, def)
			continue
		}
		// Non-looping: clamp on the last frame.
		anim.FrameTimer = 0
		anim.IsPlaying = false
		anim.IsComplete = true
		return
	}
}

// fireFrameEvent emits the current frame's event if it has one and it has
// not fired this cycle.
func (s *SpriteAnimationSystem) fireFrameEvent(e ecs.EntityID, anim *component.SpriteAnimation, def *data.AnimationDef) {
	f := def.Frames[anim.Frame]
	if f.Event == "" {
		return
	}
	bit := uint64(1) << uint(anim.Frame)
	if anim.TriggeredFrames&bit != 0 {
		return
	}
	anim.TriggeredFrames |= bit
	event.Emit(s.bus, event.AnimationFrame{
		Entity:    e,
		Animation: anim.Current,
		Frame:     anim.Frame,
		Name:      f.Event,
	})
}

func (s *SpriteAnimationSystem) warnOnce(id component.ManifestID, name string) {
	key := missingAnim{manifest: id, name: name}
	if _, seen := s.warned[key]; seen {
		return
	}
	s.warned[key] = struct{}{}
	s.log.Warn("sprite references unknown animation",
		zap.Uint32("manifest", uint32(id)),
		zap.String("animation", name))
}
