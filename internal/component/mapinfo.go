package component

// MapInfo is carried by a map's root entity, one per loaded map.
type MapInfo struct {
	ID       MapID
	Name     string
	Width    int32 // tiles
	Height   int32
	TileSize int32 // pixels per tile edge
}

// Behavior records which template an object entity was spawned from, plus
// the template's free-form properties after any spawn hook ran.
type Behavior struct {
	Template string
	Kind     string
}
