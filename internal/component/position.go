package component

// MapID identifies a loaded map.
type MapID int16

// Position is an entity's tile coordinate plus a sub-tile pixel offset.
// Pure data, zero methods — all mutations happen in System functions.
type Position struct {
	MapID   MapID
	TileX   int32
	TileY   int32
	OffsetX float64 // pixels, relative to the tile's origin
	OffsetY float64
}
