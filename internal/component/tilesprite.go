package component

// TileSprite references one tile graphic out of a tileset. Immutable after
// creation; the renderer resolves Tileset+Local against loaded textures.
type TileSprite struct {
	GID     uint32 // global tile id (tileset first-gid + local id)
	Tileset int32  // index into the loaded map's tileset list
	Local   uint32 // tile id local to the tileset
	Layer   int32  // draw order, lower first
	FlipX   bool
	FlipY   bool
}

// Solid marks an entity as blocking grid movement. Attached to tiles on
// collision layers and to solid objects.
type Solid struct{}
