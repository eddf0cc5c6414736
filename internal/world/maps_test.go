package world

import (
	"testing"

	"go.uber.org/zap"

	"github.com/pokerune/engine/internal/component"
	"github.com/pokerune/engine/internal/core/ecs"
	"github.com/pokerune/engine/internal/core/event"
)

func newTestMaps(t *testing.T, w *ecs.World, idx *Index) *Maps {
	t.Helper()
	return NewMaps(w, idx, event.NewBus(), zap.NewNop())
}

func TestMapsUnloadEmitsEvent(t *testing.T) {
	w := ecs.NewWorld(16)
	idx := NewIndex()
	bus := event.NewBus()
	m := NewMaps(w, idx, bus, zap.NewNop())

	var got []event.MapUnloaded
	event.Subscribe(bus, func(ev event.MapUnloaded) { got = append(got, ev) })

	m.Register(&LoadedMap{Info: component.MapInfo{ID: 5, Width: 4, Height: 4, TileSize: 16}})
	bus.BeginFrame() // drain MapLoaded
	m.Unload(5)
	bus.BeginFrame()

	if len(got) != 1 || got[0].MapID != 5 {
		t.Fatalf("MapUnloaded events = %+v, want one for map 5", got)
	}
}
