package component

// MaxAnimationFrames bounds frame sequences so TriggeredFrames can track
// per-frame events in a fixed 64-bit field. Longer sequences are rejected at
// document validation time, never truncated.
const MaxAnimationFrames = 64

// ManifestID is a stable key into the animation manifest cache, computed
// once when a sprite is created. Per-frame lookups must use this, not a
// recomputed composite string.
type ManifestID uint32

// SpriteAnimation drives frame playback for one entity.
type SpriteAnimation struct {
	Manifest        ManifestID
	Current         string  // active animation name within the manifest
	Frame           int     // index into the active animation's frame list
	FrameTimer      float64 // seconds accumulated on the current frame
	TriggeredFrames uint64  // bit i set once frame i's event has fired
	IsPlaying       bool
	IsComplete      bool // set when a non-looping animation reaches its end
}

// SetAnimation switches the active animation and resets playback state.
// No-op when name is already active, so calling it every frame is safe.
func (a *SpriteAnimation) SetAnimation(name string) {
	if a.Current == name {
		return
	}
	a.Current = name
	a.Frame = 0
	a.FrameTimer = 0
	a.TriggeredFrames = 0
	a.IsComplete = false
	a.IsPlaying = true
}

// AnimatedTile ties a tile entity to its tileset animation sequence. Frames
// index tile ids local to the owning tileset.
type AnimatedTile struct {
	Tileset    int32
	Frame      int
	FrameTimer float64
}
