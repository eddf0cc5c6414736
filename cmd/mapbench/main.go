// mapbench measures map load/unload throughput on a synthetic document and
// optionally captures a CPU or heap profile.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/profile"
	"go.uber.org/zap"

	"github.com/pokerune/engine/internal/core/ecs"
	"github.com/pokerune/engine/internal/core/event"
	"github.com/pokerune/engine/internal/data"
	"github.com/pokerune/engine/internal/loader"
	"github.com/pokerune/engine/internal/world"
)

type noProbe struct{}

func (noProbe) Probe(string) error { return nil }

type noTemplates struct{}

func (noTemplates) Resolve(string) (*data.ObjectTemplate, bool) { return nil, false }

func main() {
	width := flag.Int("width", 200, "map width in tiles")
	height := flag.Int("height", 200, "map height in tiles")
	layers := flag.Int("layers", 3, "tile layers")
	animations := flag.Int("animations", 64, "animated tile definitions")
	rounds := flag.Int("rounds", 50, "load/unload cycles")
	profileMode := flag.String("profile", "", "cpu, mem, or empty for none")
	flag.Parse()

	switch *profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	case "":
	default:
		fmt.Fprintf(os.Stderr, "unknown profile mode %q\n", *profileMode)
		os.Exit(2)
	}

	doc, err := data.ParseMapDocument(synthDoc(*width, *height, *layers, *animations))
	if err != nil {
		fmt.Fprintf(os.Stderr, "build document: %v\n", err)
		os.Exit(1)
	}

	log := zap.NewNop()
	w := ecs.NewWorld(*width * *height * *layers)
	maps := world.NewMaps(w, world.NewIndex(), event.NewBus(), log)
	l := loader.New(w, maps, noProbe{}, noTemplates{}, data.NewManifestCache(), nil, log)

	var loadTotal, unloadTotal time.Duration
	var lastStats loader.LookupStats
	entities := 0

	for i := 0; i < *rounds; i++ {
		start := time.Now()
		handle, err := l.LoadMap(doc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "round %d: %v\n", i, err)
			os.Exit(1)
		}
		loadTotal += time.Since(start)
		lastStats = handle.Stats
		entities = handle.Entities

		start = time.Now()
		maps.Unload(handle.MapID)
		unloadTotal += time.Since(start)
	}

	rounds64 := time.Duration(*rounds)
	fmt.Printf("map            %dx%d, %d layers, %d animations\n", *width, *height, *layers, *animations)
	fmt.Printf("entities       %d per load\n", entities)
	fmt.Printf("tiles placed   %d (animated %d)\n", lastStats.TilesPlaced, lastStats.TilesAnimated)
	fmt.Printf("lookup cost    %d (budget %d)\n", lastStats.Comparisons, lastStats.TilesPlaced+lastStats.Animations)
	fmt.Printf("avg load       %v\n", loadTotal/rounds64)
	fmt.Printf("avg unload     %v\n", unloadTotal/rounds64)
}

// synthDoc builds a dense multi-layer document whose gids cycle through one
// 256-tile tileset.
func synthDoc(width, height, layers, animations int) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "map: {id: 1, name: bench, width: %d, height: %d, tile_size: 16}\n", width, height)
	b.WriteString("tilesets:\n  - name: bench\n    first_gid: 1\n    tile_width: 16\n    tile_height: 16\n    tile_count: 256\n    image: bench.png\n")
	if animations > 0 {
		b.WriteString("    animations:\n")
		for i := 0; i < animations; i++ {
			fmt.Fprintf(&b, "      - tile_id: %d\n        frames: [{tile_id: %d, duration_ms: 120}, {tile_id: %d, duration_ms: 120}]\n",
				i, i, (i+1)%256)
		}
	}
	b.WriteString("tile_layers:\n")
	for l := 0; l < layers; l++ {
		fmt.Fprintf(&b, "  - name: layer%d\n    rows:\n", l)
		for y := 0; y < height; y++ {
			vals := make([]string, width)
			for x := 0; x < width; x++ {
				vals[x] = fmt.Sprintf("%d", (x+y+l)%256+1)
			}
			b.WriteString("      - \"" + strings.Join(vals, ",") + "\"\n")
		}
	}
	return []byte(b.String())
}
