package world

// Index is a tile-coordinate spatial index: which entities occupy which cell
// of which map. Backing storage is grouped per map so unloading a map drops
// all of its entries in one pass.
// Accessed only from the game loop goroutine — no locks.

import (
	"github.com/pokerune/engine/internal/component"
	"github.com/pokerune/engine/internal/core/ecs"
)

type tileKey struct {
	x int32
	y int32
}

type indexEntry struct {
	entity ecs.EntityID
	solid  bool
}

// Index tracks entity occupancy per (map, tile).
type Index struct {
	maps map[component.MapID]map[tileKey][]indexEntry
}

func NewIndex() *Index {
	return &Index{maps: make(map[component.MapID]map[tileKey][]indexEntry, 4)}
}

// Add places an entity into the index. solid entities block movement.
func (g *Index) Add(mapID component.MapID, x, y int32, e ecs.EntityID, solid bool) {
	cells := g.maps[mapID]
	if cells == nil {
		cells = make(map[tileKey][]indexEntry, 256)
		g.maps[mapID] = cells
	}
	k := tileKey{x: x, y: y}
	cells[k] = append(cells[k], indexEntry{entity: e, solid: solid})
}

// Remove takes an entity out of its cell. Uses swap-remove; cell order is
// not meaningful.
func (g *Index) Remove(mapID component.MapID, x, y int32, e ecs.EntityID) {
	cells := g.maps[mapID]
	if cells == nil {
		return
	}
	k := tileKey{x: x, y: y}
	entries := cells[k]
	for i := range entries {
		if entries[i].entity == e {
			last := len(entries) - 1
			entries[i] = entries[last]
			entries = entries[:last]
			if len(entries) == 0 {
				delete(cells, k)
			} else {
				cells[k] = entries
			}
			return
		}
	}
}

// Move updates an entity's cell when its tile changes, preserving solidity.
func (g *Index) Move(mapID component.MapID, fromX, fromY, toX, toY int32, e ecs.EntityID) {
	if fromX == toX && fromY == toY {
		return
	}
	solid := false
	if cells := g.maps[mapID]; cells != nil {
		for _, entry := range cells[tileKey{x: fromX, y: fromY}] {
			if entry.entity == e {
				solid = entry.solid
				break
			}
		}
	}
	g.Remove(mapID, fromX, fromY, e)
	g.Add(mapID, toX, toY, e, solid)
}

// EntitiesAt returns a copy of the entities occupying a cell.
func (g *Index) EntitiesAt(mapID component.MapID, x, y int32) []ecs.EntityID {
	cells := g.maps[mapID]
	if cells == nil {
		return nil
	}
	entries := cells[tileKey{x: x, y: y}]
	if len(entries) == 0 {
		return nil
	}
	out := make([]ecs.EntityID, len(entries))
	for i, entry := range entries {
		out[i] = entry.entity
	}
	return out
}

// AnyAt reports whether any entity occupies the cell.
func (g *Index) AnyAt(mapID component.MapID, x, y int32) bool {
	cells := g.maps[mapID]
	if cells == nil {
		return false
	}
	return len(cells[tileKey{x: x, y: y}]) > 0
}

// Blocked reports whether a solid entity occupies the cell.
func (g *Index) Blocked(mapID component.MapID, x, y int32) bool {
	cells := g.maps[mapID]
	if cells == nil {
		return false
	}
	for _, entry := range cells[tileKey{x: x, y: y}] {
		if entry.solid {
			return true
		}
	}
	return false
}

// RemoveMap drops every entry for a map in one pass. Called on unload and on
// load rollback; afterwards no entity of that map remains indexed.
func (g *Index) RemoveMap(mapID component.MapID) {
	delete(g.maps, mapID)
}

// CountMap returns the number of indexed entities on a map.
func (g *Index) CountMap(mapID component.MapID) int {
	n := 0
	for _, entries := range g.maps[mapID] {
		n += len(entries)
	}
	return n
}
