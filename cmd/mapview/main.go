// mapview renders a map document in the terminal and drives one avatar
// through the live movement and animation systems. Arrow keys or hjkl move,
// q or ESC quits.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	runewidth "github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/pokerune/engine/internal/component"
	"github.com/pokerune/engine/internal/core/ecs"
	"github.com/pokerune/engine/internal/core/event"
	coresys "github.com/pokerune/engine/internal/core/system"
	"github.com/pokerune/engine/internal/data"
	"github.com/pokerune/engine/internal/loader"
	"github.com/pokerune/engine/internal/system"
	"github.com/pokerune/engine/internal/world"
)

type noProbe struct{}

func (noProbe) Probe(string) error { return nil }

type noTemplates struct{}

func (noTemplates) Resolve(string) (*data.ObjectTemplate, bool) { return nil, false }

func main() {
	mapPath := flag.String("map", "", "map document to view")
	tickMS := flag.Int("tick", 50, "simulation tick in milliseconds")
	flag.Parse()
	if *mapPath == "" {
		fmt.Fprintln(os.Stderr, "usage: mapview -map <file.yaml>")
		os.Exit(2)
	}
	if err := run(*mapPath, time.Duration(*tickMS)*time.Millisecond); err != nil {
		fmt.Fprintf(os.Stderr, "mapview: %v\n", err)
		os.Exit(1)
	}
}

func run(mapPath string, tick time.Duration) error {
	doc, err := data.LoadMapDocument(mapPath)
	if err != nil {
		return err
	}

	log := zap.NewNop()
	w := ecs.NewWorld(4096)
	bus := event.NewBus()
	idx := world.NewIndex()
	maps := world.NewMaps(w, idx, bus, log)
	manifests := data.NewManifestCache()
	l := loader.New(w, maps, noProbe{}, noTemplates{}, manifests, nil, log)

	handle, err := l.LoadMap(doc)
	if err != nil {
		return err
	}
	mapID := handle.MapID

	avatar := spawnAvatar(w, maps, mapID)

	runner := coresys.NewRunner()
	runner.Register(system.NewMovementSystem(w, maps, bus, log))
	runner.Register(system.NewTileAnimationSystem(w, maps))
	runner.Register(system.NewCleanupSystem(w))

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.SetStyle(tcell.StyleDefault)

	events := make(chan tcell.Event, 8)
	go func() {
		for {
			events <- screen.PollEvent()
		}
	}()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				dir, quit := keyToDirection(ev)
				if quit {
					return nil
				}
				if dir != nil && avatar != 0 {
					ecs.Set(w, avatar, component.MoveIntent{Direction: *dir})
				}
			}
		case <-ticker.C:
			bus.BeginFrame()
			runner.Tick(tick)
			draw(screen, w, maps, mapID, avatar, handle)
		}
	}
}

// spawnAvatar places a movable marker on the first walkable tile. Returns 0
// when the map has no open tile.
func spawnAvatar(w *ecs.World, maps *world.Maps, mapID component.MapID) ecs.EntityID {
	info, ok := maps.Info(mapID)
	if !ok {
		return 0
	}
	for y := int32(0); y < info.Height; y++ {
		for x := int32(0); x < info.Width; x++ {
			if !maps.Walkable(mapID, x, y) {
				continue
			}
			e := w.Create()
			ecs.Set(w, e, component.Position{MapID: mapID, TileX: x, TileY: y})
			ecs.Set(w, e, component.GridMovement{
				StartX: x, StartY: y, TargetX: x, TargetY: y,
				Speed: float64(info.TileSize) * 6, // six tiles per second
			})
			maps.Index().Add(mapID, x, y, e, true)
			return e
		}
	}
	return 0
}

func keyToDirection(ev *tcell.EventKey) (*component.Direction, bool) {
	var d component.Direction
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return nil, true
	case tcell.KeyUp:
		d = component.DirNorth
	case tcell.KeyDown:
		d = component.DirSouth
	case tcell.KeyLeft:
		d = component.DirWest
	case tcell.KeyRight:
		d = component.DirEast
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return nil, true
		case 'k':
			d = component.DirNorth
		case 'j':
			d = component.DirSouth
		case 'h':
			d = component.DirWest
		case 'l':
			d = component.DirEast
		default:
			return nil, false
		}
	default:
		return nil, false
	}
	return &d, false
}

// tileGlyph picks a stable letter for a tile so animation frames visibly
// cycle: local ids map into a-z.
func tileGlyph(local uint32, solid bool) rune {
	if solid {
		return '#'
	}
	return rune('a' + local%26)
}

func draw(screen tcell.Screen, w *ecs.World, maps *world.Maps, mapID component.MapID, avatar ecs.EntityID, handle *loader.MapHandle) {
	screen.Clear()
	info, _ := maps.Info(mapID)

	type cell struct {
		glyph rune
		layer int32
	}
	grid := make(map[[2]int32]cell, int(info.Width*info.Height))

	ecs.Each2(w, func(e ecs.EntityID, pos *component.Position, spr *component.TileSprite) {
		if pos.MapID != mapID {
			return
		}
		key := [2]int32{pos.TileX, pos.TileY}
		if prev, ok := grid[key]; ok && prev.layer > spr.Layer {
			return
		}
		grid[key] = cell{
			glyph: tileGlyph(spr.Local, ecs.Has[component.Solid](w, e)),
			layer: spr.Layer,
		}
	})

	for key, c := range grid {
		screen.SetContent(int(key[0]), int(key[1]), c.glyph, nil, tcell.StyleDefault)
	}

	status := fmt.Sprintf("%s  %dx%d  entities=%d  animated-cost=%d  (arrows/hjkl move, q quits)",
		info.Name, info.Width, info.Height, handle.Entities, handle.Stats.Comparisons)
	if avatar != 0 {
		if pos, ok := ecs.TryGet[component.Position](w, avatar); ok {
			screen.SetContent(int(pos.TileX), int(pos.TileY), '@', nil,
				tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true))
			status = fmt.Sprintf("@(%d,%d)  %s", pos.TileX, pos.TileY, status)
		}
	}

	width, height := screen.Size()
	status = runewidth.Truncate(status, width, "…")
	col := 0
	for _, r := range status {
		screen.SetContent(col, height-1, r, nil, tcell.StyleDefault.Reverse(true))
		col += runewidth.RuneWidth(r)
	}
	screen.Show()
}
