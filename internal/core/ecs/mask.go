package ecs

// mask represents a set of up to MaxComponentTypes component IDs. Each bit
// corresponds to one component type; an archetype is identified by its mask.
type mask [4]uint64

func (m *mask) set(bit uint8) {
	m[bit>>6] |= uint64(1) << uint64(bit&63)
}

func (m *mask) unset(bit uint8) {
	m[bit>>6] &^= uint64(1) << uint64(bit&63)
}

func (m mask) containsBit(bit uint8) bool {
	return m[bit>>6]&(uint64(1)<<uint64(bit&63)) != 0
}

// containsAll reports whether every bit of sub is also set in m.
func (m mask) containsAll(sub mask) bool {
	return m[0]&sub[0] == sub[0] &&
		m[1]&sub[1] == sub[1] &&
		m[2]&sub[2] == sub[2] &&
		m[3]&sub[3] == sub[3]
}

// intersects reports whether m and other share any bit.
func (m mask) intersects(other mask) bool {
	return m[0]&other[0] != 0 ||
		m[1]&other[1] != 0 ||
		m[2]&other[2] != 0 ||
		m[3]&other[3] != 0
}

func (m mask) with(bit uint8) mask {
	m.set(bit)
	return m
}

func (m mask) without(bit uint8) mask {
	m.unset(bit)
	return m
}
