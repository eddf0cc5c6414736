package event

import "github.com/pokerune/engine/internal/core/ecs"

// MapLoaded fires after a map load has fully committed.
type MapLoaded struct {
	MapID    int16
	Name     string
	Entities int
}

// MapUnloaded fires after a map's entities and index entries are gone.
type MapUnloaded struct {
	MapID int16
}

// MovementCompleted fires when a grid step finishes and the entity snaps to
// its target tile.
type MovementCompleted struct {
	Entity ecs.EntityID
	MapID  int16
	TileX  int32
	TileY  int32
}

// AnimationFrame fires at most once per frame index per playback, gated by
// the animation's triggered-frame bit-field.
type AnimationFrame struct {
	Entity    ecs.EntityID
	Animation string
	Frame     int
	Name      string // event name from the manifest frame, may be ""
}
