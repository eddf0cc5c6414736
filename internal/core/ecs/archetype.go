package ecs

// column is one contiguous component array inside an archetype. Concrete
// storage is always *col[T]; the interface exists so archetypes can shuffle
// rows without knowing component types.
type column interface {
	len() int
	extend(n int)
	truncate(n int)
	swapRemove(i int)
	appendFrom(src column, srcRow int)
	appendZero()
}

type col[T any] struct {
	data []T
}

func (c *col[T]) len() int    { return len(c.data) }
func (c *col[T]) extend(n int) {
	c.data = append(c.data, make([]T, n)...)
}
func (c *col[T]) truncate(n int) { c.data = c.data[:n] }

func (c *col[T]) swapRemove(i int) {
	last := len(c.data) - 1
	c.data[i] = c.data[last]
	var zero T
	c.data[last] = zero
	c.data = c.data[:last]
}

func (c *col[T]) appendFrom(src column, srcRow int) {
	c.data = append(c.data, src.(*col[T]).data[srcRow])
}

func (c *col[T]) appendZero() {
	var zero T
	c.data = append(c.data, zero)
}

// archetype holds all entities sharing one exact component set. Component
// data is stored column-wise so iteration touches contiguous memory.
type archetype struct {
	mask     mask
	index    int
	compIDs  []uint8
	columns  [MaxComponentTypes]column
	entities []EntityID
}

func (a *archetype) size() int { return len(a.entities) }
