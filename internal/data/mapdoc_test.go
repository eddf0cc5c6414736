package data

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pokerune/engine/internal/component"
)

func validDocYAML() string {
	return `
map:
  id: 1
  name: test_town
  width: 4
  height: 3
  tile_size: 16
tilesets:
  - name: overworld
    first_gid: 1
    tile_width: 16
    tile_height: 16
    tile_count: 16
    image: overworld.png
    animations:
      - tile_id: 2
        frames:
          - {tile_id: 2, duration_ms: 120}
          - {tile_id: 3, duration_ms: 120}
tile_layers:
  - name: ground
    rows:
      - "1,2,3,4"
      - "1,0,0,4"
      - "1,2,3,4"
  - name: walls
    collides: true
    placements:
      - {x: 1, y: 1, gid: 5, flip_x: true}
object_layers:
  - name: npcs
    objects:
      - {x: 2, y: 2, template: "npc/guide", properties: {dialog: "hi"}}
`
}

func TestParseValidDocument(t *testing.T) {
	doc, err := ParseMapDocument([]byte(validDocYAML()))
	if err != nil {
		t.Fatalf("ParseMapDocument: %v", err)
	}
	if doc.Map.Width != 4 || doc.Map.Height != 3 {
		t.Fatalf("dimensions %dx%d", doc.Map.Width, doc.Map.Height)
	}
	if doc.AnimationCount() != 1 {
		t.Fatalf("AnimationCount = %d, want 1", doc.AnimationCount())
	}

	ts, local, ok := doc.TilesetFor(3)
	if !ok || ts != 0 || local != 2 {
		t.Fatalf("TilesetFor(3) = (%d,%d,%v)", ts, local, ok)
	}
	if _, _, ok := doc.TilesetFor(99); ok {
		t.Fatal("TilesetFor resolved a gid outside every tileset")
	}

	ground := doc.LayerPlacements(&doc.TileLayers[0])
	if len(ground) != 10 {
		t.Fatalf("ground layer has %d placements, want 10 (two empty cells)", len(ground))
	}
	walls := doc.LayerPlacements(&doc.TileLayers[1])
	if len(walls) != 1 || !walls[0].FlipX {
		t.Fatalf("walls placements: %+v", walls)
	}
}

func TestFlipBitsDecoded(t *testing.T) {
	y := strings.Replace(validDocYAML(),
		`- "1,2,3,4"
      - "1,0,0,4"`,
		fmt.Sprintf(`- "1,2,3,%d"
      - "1,0,0,4"`, 4|uint32(0x80000000)), 1)
	doc, err := ParseMapDocument([]byte(y))
	if err != nil {
		t.Fatalf("ParseMapDocument: %v", err)
	}
	got := doc.LayerPlacements(&doc.TileLayers[0])
	var found bool
	for _, p := range got {
		if p.X == 3 && p.Y == 0 {
			found = true
			if p.GID != 4 || !p.FlipX || p.FlipY {
				t.Fatalf("flip decode wrong: %+v", p)
			}
		}
	}
	if !found {
		t.Fatal("flipped placement missing")
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(string) string
	}{
		{"negative width", func(s string) string { return strings.Replace(s, "width: 4", "width: -4", 1) }},
		{"zero tile size", func(s string) string { return strings.Replace(s, "tile_size: 16", "tile_size: 0", 1) }},
		{"dangling gid", func(s string) string { return strings.Replace(s, `"1,2,3,4"`, `"1,2,3,400"`, 1) }},
		{"first_gid zero", func(s string) string { return strings.Replace(s, "first_gid: 1", "first_gid: 0", 1) }},
		{"row count mismatch", func(s string) string {
			return strings.Replace(s, "      - \"1,2,3,4\"\n      - \"1,0,0,4\"\n", "      - \"1,2,3,4\"\n", 1)
		}},
		{"object off map", func(s string) string { return strings.Replace(s, "x: 2, y: 2", "x: 9, y: 2", 1) }},
		{"empty template", func(s string) string { return strings.Replace(s, `template: "npc/guide"`, `template: ""`, 1) }},
		{"placement gid zero", func(s string) string { return strings.Replace(s, "gid: 5", "gid: 0", 1) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseMapDocument([]byte(tc.mutate(validDocYAML())))
			if !errors.Is(err, ErrMapDocumentInvalid) {
				t.Fatalf("want ErrMapDocumentInvalid, got %v", err)
			}
		})
	}
}

func TestValidateRejectsOversizedAnimation(t *testing.T) {
	frames := make([]string, 0, component.MaxAnimationFrames+1)
	for i := 0; i <= component.MaxAnimationFrames; i++ {
		frames = append(frames, fmt.Sprintf("          - {tile_id: %d, duration_ms: 50}", i%16))
	}
	y := strings.Replace(validDocYAML(),
		`          - {tile_id: 2, duration_ms: 120}
          - {tile_id: 3, duration_ms: 120}`,
		strings.Join(frames, "\n"), 1)
	_, err := ParseMapDocument([]byte(y))
	if !errors.Is(err, ErrMapDocumentInvalid) {
		t.Fatalf("want ErrMapDocumentInvalid for %d frames, got %v", component.MaxAnimationFrames+1, err)
	}
}

func TestManifestCacheStableIDs(t *testing.T) {
	c := NewManifestCache()
	id1 := c.Register(&SpriteManifest{Name: "player", Animations: map[string]AnimationDef{
		"idle_south": {Frames: []SpriteFrame{{Index: 0, DurationMS: 100}}, Loop: true},
	}})
	id2 := c.Register(&SpriteManifest{Name: "npc"})

	if id1 == id2 {
		t.Fatal("distinct manifests share an ID")
	}
	if again := c.Register(&SpriteManifest{Name: "player"}); again != id1 {
		t.Fatalf("re-registering returned %d, want %d", again, id1)
	}
	if got, ok := c.LookupName("player"); !ok || got != id1 {
		t.Fatalf("LookupName = (%d,%v)", got, ok)
	}
	if _, ok := c.Animation(id1, "idle_south"); !ok {
		t.Fatal("Animation lookup failed")
	}
	if _, ok := c.Animation(id1, "no_such"); ok {
		t.Fatal("Animation resolved an unknown name")
	}
}
