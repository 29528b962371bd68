package worldmap

import "transitcore/typedef"

var cardinalSteps = [4]typedef.Position{
	{X: 0, Y: -1}, // North
	{X: 0, Y: 1},  // South
	{X: 1, Y: 0},  // East
	{X: -1, Y: 0}, // West
}

// Neighbours implements the Grid Expander (spec §4.2): the four cardinal
// grid cells, filtered to the world border, plus one Neighbour per
// Connection incident to the Location at pos (if any). Diagonals are never
// emitted. The result is not deduplicated: a train edge landing on a
// grid-adjacent cell yields both the plain grid step and the Connection
// hop; A*'s cost comparison decides which is cheaper.
func (m *Map) Neighbours(pos typedef.Position) []typedef.Neighbour {
	out := make([]typedef.Neighbour, 0, 6)

	for _, step := range cardinalSteps {
		next := typedef.Position{X: pos.X + step.X, Y: pos.Y + step.Y}
		if !m.border.Contains(next) {
			continue
		}
		out = append(out, typedef.Neighbour{Pos: next})
	}

	loc, ok := m.LocationAt(pos)
	if !ok {
		return out
	}
	for _, conn := range loc.Connections {
		other := conn.OtherSide(loc)
		if other == nil {
			continue
		}
		out = append(out, typedef.Neighbour{Pos: other.Pos, Connection: conn})
	}
	return out
}
