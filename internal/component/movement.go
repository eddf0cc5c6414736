package component

// Direction is a four-way facing on the tile grid.
type Direction uint8

const (
	DirSouth Direction = iota
	DirNorth
	DirEast
	DirWest
)

// String returns the suffix used in animation names ("walk_south" etc).
func (d Direction) String() string {
	switch d {
	case DirSouth:
		return "south"
	case DirNorth:
		return "north"
	case DirEast:
		return "east"
	case DirWest:
		return "west"
	}
	return "south"
}

// ParseDirection maps an animation-suffix name back to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "south":
		return DirSouth, true
	case "north":
		return DirNorth, true
	case "east":
		return DirEast, true
	case "west":
		return DirWest, true
	}
	return DirSouth, false
}

// DeltaX returns the tile-grid X step for the direction.
func (d Direction) DeltaX() int32 {
	switch d {
	case DirEast:
		return 1
	case DirWest:
		return -1
	}
	return 0
}

// DeltaY returns the tile-grid Y step for the direction. Y grows southward.
func (d Direction) DeltaY() int32 {
	switch d {
	case DirSouth:
		return 1
	case DirNorth:
		return -1
	}
	return 0
}

// GridMovement is the per-entity movement state machine. While IsMoving,
// Progress advances from 0 to 1 and the render position interpolates between
// the start and target tiles. Completion (Progress >= 1) snaps Position to
// the target tile and resets the struct to idle.
type GridMovement struct {
	StartX   int32 // tile the move began on
	StartY   int32
	TargetX  int32 // tile being moved onto
	TargetY  int32
	Progress float64 // [0,1]
	Speed    float64 // pixels per second
	Facing   Direction
	IsMoving bool
}

// MoveIntent is attached by input (or NPC behavior) to request one grid step.
// The movement system consumes and removes it; a rejected intent never
// transitions the entity to Moving.
type MoveIntent struct {
	Direction Direction
}
