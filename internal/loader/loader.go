package loader

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pokerune/engine/internal/component"
	"github.com/pokerune/engine/internal/core/ecs"
	"github.com/pokerune/engine/internal/data"
	"github.com/pokerune/engine/internal/scripting"
	"github.com/pokerune/engine/internal/world"
)

// TextureProber verifies tileset images can be loaded. The assets cache
// implements it; probing warms the cache before any entity exists.
type TextureProber interface {
	Probe(name string) error
}

// TemplateResolver resolves object template IDs. Backed by the YAML table
// in-process or by the Postgres repository when a database is configured.
type TemplateResolver interface {
	Resolve(id string) (*data.ObjectTemplate, bool)
}

// SpawnHook runs a template's Lua hook when an object is placed.
type SpawnHook interface {
	OnSpawn(fn string, ctx scripting.SpawnContext) scripting.SpawnResult
}

// LookupStats records the cost of animated-tile attachment for one load.
// Comparisons is the total work: one per tile placed plus one gid lookup per
// animation definition, independent of tiles×animations.
type LookupStats struct {
	TilesPlaced   int
	Animations    int
	TilesAnimated int
	Comparisons   int
}

// MapHandle identifies one committed map load.
type MapHandle struct {
	JobID    uuid.UUID
	MapID    component.MapID
	Root     ecs.EntityID
	Entities int
	Stats    LookupStats
}

// Loader turns validated map documents into live entities: tiles in bulk,
// animated tiles, templated objects, spatial index entries. Commits run on
// the game-loop goroutine; parsing and texture probing may run anywhere.
type Loader struct {
	world     *ecs.World
	maps      *world.Maps
	textures  TextureProber
	templates TemplateResolver
	manifests *data.ManifestCache
	hook      SpawnHook // optional
	log       *zap.Logger

	tiles      *ecs.Batch2[component.Position, component.TileSprite]
	solidTiles *ecs.Batch3[component.Position, component.TileSprite, component.Solid]
}

func New(w *ecs.World, maps *world.Maps, textures TextureProber, templates TemplateResolver, manifests *data.ManifestCache, hook SpawnHook, log *zap.Logger) *Loader {
	return &Loader{
		world:      w,
		maps:       maps,
		textures:   textures,
		templates:  templates,
		manifests:  manifests,
		hook:       hook,
		log:        log,
		tiles:      ecs.NewBatch2[component.Position, component.TileSprite](w),
		solidTiles: ecs.NewBatch3[component.Position, component.TileSprite, component.Solid](w),
	}
}

// LoadMap synchronously commits a validated document.
func (l *Loader) LoadMap(doc *data.MapDocument) (*MapHandle, error) {
	if err := l.probeTilesets(doc); err != nil {
		return nil, err
	}
	return l.commit(doc, uuid.New())
}

// AsyncResult carries a parsed, probed document back to the game loop.
type AsyncResult struct {
	JobID uuid.UUID
	Doc   *data.MapDocument
	Err   error
}

// LoadMapAsync parses and probes off the game loop. The caller receives the
// result on the returned channel and commits it with Commit from the loop
// goroutine; no entity is touched until then.
func (l *Loader) LoadMapAsync(path string) (uuid.UUID, <-chan AsyncResult) {
	jobID := uuid.New()
	ch := make(chan AsyncResult, 1)
	go func() {
		doc, err := data.LoadMapDocument(path)
		if err == nil {
			err = l.probeTilesets(doc)
		}
		ch <- AsyncResult{JobID: jobID, Doc: doc, Err: err}
	}()
	return jobID, ch
}

// Commit applies an async result on the game-loop goroutine.
func (l *Loader) Commit(res AsyncResult) (*MapHandle, error) {
	if res.Err != nil {
		return nil, res.Err
	}
	return l.commit(res.Doc, res.JobID)
}

func (l *Loader) probeTilesets(doc *data.MapDocument) error {
	for i := range doc.Tilesets {
		ts := &doc.Tilesets[i]
		if err := l.textures.Probe(ts.Image); err != nil {
			return fmt.Errorf("%w: tileset %q image %q: %v", ErrTilesetLoadFailed, ts.Name, ts.Image, err)
		}
	}
	return nil
}

// commit creates every entity for the map. All-or-nothing: any failure
// destroys everything created so far and leaves the index untouched for
// other maps.
func (l *Loader) commit(doc *data.MapDocument, jobID uuid.UUID) (handle *MapHandle, err error) {
	mapID := doc.Map.ID
	if l.maps.Loaded(mapID) {
		return nil, fmt.Errorf("%w: map %d", ErrMapAlreadyLoaded, mapID)
	}

	created := make([]ecs.EntityID, 0, 256)
	idx := l.maps.Index()
	defer func() {
		if err == nil {
			return
		}
		for _, e := range created {
			l.world.Destroy(e)
		}
		idx.RemoveMap(mapID)
	}()

	info := component.MapInfo{
		ID:       mapID,
		Name:     doc.Map.Name,
		Width:    doc.Map.Width,
		Height:   doc.Map.Height,
		TileSize: doc.Map.TileSize,
	}
	root := l.world.Create()
	ecs.Set(l.world, root, info)
	created = append(created, root)

	var stats LookupStats
	byGID := make(map[uint32][]ecs.EntityID, 64)

	for li := range doc.TileLayers {
		layer := &doc.TileLayers[li]
		ents, perr := l.placeLayer(doc, layer, int32(li), mapID, byGID, &stats)
		if perr != nil {
			return nil, perr
		}
		created = append(created, ents...)
		// Every tile goes into the index so "what occupies this cell"
		// queries see ground as well as walls; only colliding layers block.
		for _, e := range ents {
			pos, _ := ecs.TryGetRef[component.Position](l.world, e)
			idx.Add(mapID, pos.TileX, pos.TileY, e, layer.Collides)
		}
	}

	l.attachAnimations(doc, byGID, &stats)

	for oi := range doc.ObjectLayers {
		ol := &doc.ObjectLayers[oi]
		for i := range ol.Objects {
			e, spawned := l.spawnObject(doc, &ol.Objects[i], mapID)
			if spawned {
				created = append(created, e)
			}
		}
	}

	animations := make(map[uint32][]data.TileFrame, stats.Animations)
	for ti := range doc.Tilesets {
		ts := &doc.Tilesets[ti]
		for ai := range ts.Animations {
			a := &ts.Animations[ai]
			animations[ts.FirstGID+a.TileID] = a.Frames
		}
	}

	l.maps.Register(&world.LoadedMap{Info: info, Root: root, Entities: created, Animations: animations})
	l.log.Info("map loaded",
		zap.Int16("map", int16(mapID)),
		zap.String("name", info.Name),
		zap.Int("entities", len(created)),
		zap.Int("tiles", stats.TilesPlaced),
		zap.Int("animated", stats.TilesAnimated))

	return &MapHandle{
		JobID:    jobID,
		MapID:    mapID,
		Root:     root,
		Entities: len(created),
		Stats:    stats,
	}, nil
}

// placeLayer bulk-creates one layer's tiles. Rows of a layer share one
// archetype, so storage is sized once and the tiles land contiguously.
func (l *Loader) placeLayer(doc *data.MapDocument, layer *data.TileLayer, layerIdx int32, mapID component.MapID, byGID map[uint32][]ecs.EntityID, stats *LookupStats) ([]ecs.EntityID, error) {
	placements := doc.LayerPlacements(layer)
	if len(placements) == 0 {
		return nil, nil
	}

	fillAt := func(i int, pos *component.Position, spr *component.TileSprite) error {
		p := placements[i]
		tileset, local, ok := doc.TilesetFor(p.GID)
		if !ok {
			return fmt.Errorf("layer %q gid %d has no owning tileset", layer.Name, p.GID)
		}
		*pos = component.Position{MapID: mapID, TileX: p.X, TileY: p.Y}
		*spr = component.TileSprite{
			GID:     p.GID,
			Tileset: tileset,
			Local:   local,
			Layer:   layerIdx,
			FlipX:   p.FlipX,
			FlipY:   p.FlipY,
		}
		return nil
	}

	var ents []ecs.EntityID
	var err error
	if layer.Collides {
		ents, err = l.solidTiles.CreateEntities(len(placements), func(i int, pos *component.Position, spr *component.TileSprite, _ *component.Solid) error {
			return fillAt(i, pos, spr)
		})
	} else {
		ents, err = l.tiles.CreateEntities(len(placements), fillAt)
	}
	if err != nil {
		return nil, fmt.Errorf("place layer %q: %w", layer.Name, err)
	}

	for i, e := range ents {
		byGID[placements[i].GID] = append(byGID[placements[i].GID], e)
		stats.Comparisons++
	}
	stats.TilesPlaced += len(ents)
	return ents, nil
}

// attachAnimations attaches AnimatedTile to every placed tile whose gid has
// an animation sequence. One gid-map lookup per animation definition; cost
// is tiles placed plus animations defined, never their product.
func (l *Loader) attachAnimations(doc *data.MapDocument, byGID map[uint32][]ecs.EntityID, stats *LookupStats) {
	for ti := range doc.Tilesets {
		ts := &doc.Tilesets[ti]
		for ai := range ts.Animations {
			gid := ts.FirstGID + ts.Animations[ai].TileID
			stats.Animations++
			stats.Comparisons++
			for _, e := range byGID[gid] {
				at, ok := ecs.Add[component.AnimatedTile](l.world, e)
				if !ok {
					continue
				}
				at.Tileset = int32(ti)
				stats.TilesAnimated++
			}
		}
	}
}

// spawnObject places one templated object. Unknown templates and cancelled
// hooks skip the placement; a map never fails to load over one bad object.
func (l *Loader) spawnObject(doc *data.MapDocument, obj *data.ObjectPlacement, mapID component.MapID) (ecs.EntityID, bool) {
	tpl, ok := l.templates.Resolve(obj.Template)
	if !ok {
		l.log.Warn("object references unknown template",
			zap.String("template", obj.Template),
			zap.Int16("map", int16(mapID)),
			zap.Int32("x", obj.X), zap.Int32("y", obj.Y))
		return 0, false
	}

	props := mergeProps(tpl.Props, obj.Properties)

	var res scripting.SpawnResult
	if l.hook != nil && tpl.OnSpawn != "" {
		res = l.hook.OnSpawn(tpl.OnSpawn, scripting.SpawnContext{
			Template: tpl.ID,
			Kind:     tpl.Kind,
			MapID:    int(mapID),
			MapName:  doc.Map.Name,
			X:        int(obj.X),
			Y:        int(obj.Y),
			Props:    props,
		})
		if res.Cancel {
			return 0, false
		}
		props = mergeProps(props, res.Props)
	}

	facing := component.DirSouth
	if d, ok := component.ParseDirection(res.Facing); ok {
		facing = d
	}

	e := l.world.Create()
	ecs.Set(l.world, e, component.Position{MapID: mapID, TileX: obj.X, TileY: obj.Y})
	ecs.Set(l.world, e, component.Behavior{Template: tpl.ID, Kind: tpl.Kind})
	ecs.Set(l.world, e, component.GridMovement{
		StartX: obj.X, StartY: obj.Y,
		TargetX: obj.X, TargetY: obj.Y,
		Speed:  tpl.Speed,
		Facing: facing,
	})

	switch {
	case tpl.Manifest != "":
		if id, ok := l.manifests.LookupName(tpl.Manifest); ok {
			anim := component.SpriteAnimation{Manifest: id}
			name := res.Animation
			if name == "" {
				name = "idle_" + facing.String()
			}
			anim.SetAnimation(name)
			ecs.Set(l.world, e, anim)
		} else {
			l.log.Warn("template references unknown sprite manifest",
				zap.String("template", tpl.ID),
				zap.String("manifest", tpl.Manifest))
		}
	case tpl.Sprite != 0:
		if tileset, local, ok := doc.TilesetFor(tpl.Sprite); ok {
			ecs.Set(l.world, e, component.TileSprite{
				GID:     tpl.Sprite,
				Tileset: tileset,
				Local:   local,
				Layer:   int32(len(doc.TileLayers)), // objects draw above tiles
			})
		}
	}

	solid := tpl.Solid || res.Solid
	if solid {
		ecs.Set(l.world, e, component.Solid{})
	}
	l.maps.Index().Add(mapID, obj.X, obj.Y, e, solid)
	return e, true
}

func mergeProps(base, overlay map[string]string) map[string]string {
	if len(base) == 0 && len(overlay) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
