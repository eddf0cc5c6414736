package data

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pokerune/engine/internal/component"
)

// ErrMapDocumentInvalid marks a malformed map document: missing required
// fields, negative dimensions, dangling tileset references. Fatal to the
// load; the map is never entered.
var ErrMapDocumentInvalid = errors.New("data: map document invalid")

// Flip flags packed into the two high bits of a dense-row gid value.
const (
	flipXBit uint32 = 0x80000000
	flipYBit uint32 = 0x40000000
	gidMask  uint32 = 0x3FFFFFFF
)

// MapDocument is the in-memory model of one map file: grid metadata,
// tilesets with per-tile animation sequences, tile layers and object layers.
type MapDocument struct {
	Map          MapMeta       `yaml:"map"`
	Tilesets     []TilesetDef  `yaml:"tilesets"`
	TileLayers   []TileLayer   `yaml:"tile_layers"`
	ObjectLayers []ObjectLayer `yaml:"object_layers"`

	// firstGIDs is built by Validate, sorted, for gid→tileset resolution.
	firstGIDs []int
}

type MapMeta struct {
	ID       component.MapID `yaml:"id"`
	Name     string          `yaml:"name"`
	Width    int32           `yaml:"width"`
	Height   int32           `yaml:"height"`
	TileSize int32           `yaml:"tile_size"`
}

// TilesetDef declares a tileset: a gid range plus per-tile metadata.
type TilesetDef struct {
	Name       string         `yaml:"name"`
	FirstGID   uint32         `yaml:"first_gid"`
	TileWidth  int32          `yaml:"tile_width"`
	TileHeight int32          `yaml:"tile_height"`
	TileCount  uint32         `yaml:"tile_count"`
	Image      string         `yaml:"image"`
	Animations []TileAnimation `yaml:"animations"`
}

// TileAnimation is a frame sequence for one tile id local to the tileset.
type TileAnimation struct {
	TileID uint32      `yaml:"tile_id"`
	Frames []TileFrame `yaml:"frames"`
}

type TileFrame struct {
	TileID     uint32 `yaml:"tile_id"`
	DurationMS int    `yaml:"duration_ms"`
}

// TileLayer is either a dense grid (Rows, CSV of gid values with flip bits
// in the two high bits) or a sparse placement list. Exactly one form may be
// populated.
type TileLayer struct {
	Name       string          `yaml:"name"`
	Collides   bool            `yaml:"collides"`
	Rows       []string        `yaml:"rows"`
	Placements []TilePlacement `yaml:"placements"`
}

type TilePlacement struct {
	X     int32  `yaml:"x"`
	Y     int32  `yaml:"y"`
	GID   uint32 `yaml:"gid"`
	FlipX bool   `yaml:"flip_x"`
	FlipY bool   `yaml:"flip_y"`
}

// ObjectLayer places templated objects (NPCs, signs, warps) on the grid.
type ObjectLayer struct {
	Name    string            `yaml:"name"`
	Objects []ObjectPlacement `yaml:"objects"`
}

type ObjectPlacement struct {
	X          int32             `yaml:"x"`
	Y          int32             `yaml:"y"`
	Template   string            `yaml:"template"`
	Properties map[string]string `yaml:"properties"`
}

// LoadMapDocument reads, parses and validates one map file.
func LoadMapDocument(path string) (*MapDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map document %s: %w", path, err)
	}
	return ParseMapDocument(raw)
}

// ParseMapDocument parses and validates a map document from YAML bytes.
func ParseMapDocument(raw []byte) (*MapDocument, error) {
	var doc MapDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMapDocumentInvalid, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks structural invariants and builds the gid resolution table.
// All failures wrap ErrMapDocumentInvalid.
func (d *MapDocument) Validate() error {
	m := d.Map
	if m.Width <= 0 || m.Height <= 0 {
		return invalidf("map %q has dimensions %dx%d", m.Name, m.Width, m.Height)
	}
	if m.TileSize <= 0 {
		return invalidf("map %q has tile size %d", m.Name, m.TileSize)
	}

	names := make(map[string]struct{}, len(d.Tilesets))
	type gidRange struct{ first, last uint32 }
	ranges := make([]gidRange, 0, len(d.Tilesets))
	for i := range d.Tilesets {
		ts := &d.Tilesets[i]
		if ts.Name == "" {
			return invalidf("tileset %d has no name", i)
		}
		if _, dup := names[ts.Name]; dup {
			return invalidf("duplicate tileset name %q", ts.Name)
		}
		names[ts.Name] = struct{}{}
		if ts.FirstGID == 0 {
			return invalidf("tileset %q has first_gid 0 (gid 0 means empty)", ts.Name)
		}
		if ts.TileWidth <= 0 || ts.TileHeight <= 0 {
			return invalidf("tileset %q has tile dimensions %dx%d", ts.Name, ts.TileWidth, ts.TileHeight)
		}
		if ts.TileCount == 0 {
			return invalidf("tileset %q has tile_count 0", ts.Name)
		}
		if ts.Image == "" {
			return invalidf("tileset %q has no image", ts.Name)
		}
		for _, anim := range ts.Animations {
			if anim.TileID >= ts.TileCount {
				return invalidf("tileset %q animates tile %d beyond tile_count %d", ts.Name, anim.TileID, ts.TileCount)
			}
			if len(anim.Frames) == 0 {
				return invalidf("tileset %q tile %d has an empty frame sequence", ts.Name, anim.TileID)
			}
			if len(anim.Frames) > component.MaxAnimationFrames {
				return invalidf("tileset %q tile %d has %d frames (max %d)", ts.Name, anim.TileID, len(anim.Frames), component.MaxAnimationFrames)
			}
			for _, f := range anim.Frames {
				if f.TileID >= ts.TileCount {
					return invalidf("tileset %q animation frame references tile %d beyond tile_count %d", ts.Name, f.TileID, ts.TileCount)
				}
				if f.DurationMS <= 0 {
					return invalidf("tileset %q tile %d has frame duration %dms", ts.Name, anim.TileID, f.DurationMS)
				}
			}
		}
		ranges = append(ranges, gidRange{first: ts.FirstGID, last: ts.FirstGID + ts.TileCount - 1})
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].first < ranges[j].first })
	for i := 1; i < len(ranges); i++ {
		if ranges[i].first <= ranges[i-1].last {
			return invalidf("tileset gid ranges overlap at gid %d", ranges[i].first)
		}
	}

	d.firstGIDs = d.firstGIDs[:0]
	for i := range d.Tilesets {
		d.firstGIDs = append(d.firstGIDs, int(d.Tilesets[i].FirstGID))
	}

	for li := range d.TileLayers {
		layer := &d.TileLayers[li]
		if len(layer.Rows) > 0 && len(layer.Placements) > 0 {
			return invalidf("layer %q mixes dense rows and sparse placements", layer.Name)
		}
		if len(layer.Rows) > 0 {
			if int32(len(layer.Rows)) != m.Height {
				return invalidf("layer %q has %d rows, map height is %d", layer.Name, len(layer.Rows), m.Height)
			}
			for y, row := range layer.Rows {
				vals := strings.Split(row, ",")
				if int32(len(vals)) != m.Width {
					return invalidf("layer %q row %d has %d values, map width is %d", layer.Name, y, len(vals), m.Width)
				}
				for x, tok := range vals {
					v, err := strconv.ParseUint(strings.TrimSpace(tok), 10, 32)
					if err != nil {
						return invalidf("layer %q row %d col %d: %v", layer.Name, y, x, err)
					}
					if gid := uint32(v) & gidMask; gid != 0 {
						if _, _, ok := d.TilesetFor(gid); !ok {
							return invalidf("layer %q references gid %d with no owning tileset", layer.Name, gid)
						}
					}
				}
			}
		}
		for _, p := range layer.Placements {
			if p.X < 0 || p.X >= m.Width || p.Y < 0 || p.Y >= m.Height {
				return invalidf("layer %q places a tile outside the map at (%d,%d)", layer.Name, p.X, p.Y)
			}
			if p.GID == 0 {
				return invalidf("layer %q has an explicit placement with gid 0", layer.Name)
			}
			if _, _, ok := d.TilesetFor(p.GID); !ok {
				return invalidf("layer %q references gid %d with no owning tileset", layer.Name, p.GID)
			}
		}
	}

	for _, ol := range d.ObjectLayers {
		for _, obj := range ol.Objects {
			if obj.Template == "" {
				return invalidf("object layer %q has a placement with no template", ol.Name)
			}
			if obj.X < 0 || obj.X >= m.Width || obj.Y < 0 || obj.Y >= m.Height {
				return invalidf("object layer %q places %q outside the map at (%d,%d)", ol.Name, obj.Template, obj.X, obj.Y)
			}
		}
	}
	return nil
}

// TilesetFor resolves a global tile id to (tileset index, local tile id).
// Valid only after Validate.
func (d *MapDocument) TilesetFor(gid uint32) (tileset int32, local uint32, ok bool) {
	// Find the last tileset whose first_gid <= gid.
	i := sort.SearchInts(d.firstGIDs, int(gid)+1) - 1
	if i < 0 {
		return 0, 0, false
	}
	ts := &d.Tilesets[i]
	if gid < ts.FirstGID || gid >= ts.FirstGID+ts.TileCount {
		return 0, 0, false
	}
	return int32(i), gid - ts.FirstGID, true
}

// LayerPlacements flattens one tile layer into its non-empty placements,
// decoding flip bits from dense rows. Rows are assumed validated.
func (d *MapDocument) LayerPlacements(layer *TileLayer) []TilePlacement {
	if len(layer.Placements) > 0 {
		out := make([]TilePlacement, len(layer.Placements))
		copy(out, layer.Placements)
		return out
	}
	out := make([]TilePlacement, 0, int(d.Map.Width)*len(layer.Rows)/2)
	for y, row := range layer.Rows {
		for x, tok := range strings.Split(row, ",") {
			v, err := strconv.ParseUint(strings.TrimSpace(tok), 10, 32)
			if err != nil {
				continue
			}
			raw := uint32(v)
			gid := raw & gidMask
			if gid == 0 {
				continue
			}
			out = append(out, TilePlacement{
				X:     int32(x),
				Y:     int32(y),
				GID:   gid,
				FlipX: raw&flipXBit != 0,
				FlipY: raw&flipYBit != 0,
			})
		}
	}
	return out
}

// AnimationCount returns the total number of tile animation definitions
// across all tilesets.
func (d *MapDocument) AnimationCount() int {
	n := 0
	for i := range d.Tilesets {
		n += len(d.Tilesets[i].Animations)
	}
	return n
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMapDocumentInvalid, fmt.Sprintf(format, args...))
}
