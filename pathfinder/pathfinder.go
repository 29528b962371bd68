// Package pathfinder implements the Grid Expander's cost shaping, the
// Heuristic Oracle and its precomputed cache, and the A* search itself
// (spec §4.2-§4.4).
package pathfinder

import "transitcore/typedef"

// SearchConfig tunes the A* cost shaping of spec §4.4 step 4c. The defaults
// match the spec exactly; both are exposed as tunables per the spec's §9
// open-question resolution.
type SearchConfig struct {
	// HeuristicDistanceThreshold: below this estimated distance-to-transit,
	// the heuristic pull cost applies and overrides any train discount.
	HeuristicDistanceThreshold int
	// HeuristicPullCost is the edge cost used once the heuristic pull
	// applies.
	HeuristicPullCost int
}

// DefaultSearchConfig returns spec §9's defaults (threshold 2000, pull 10).
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		HeuristicDistanceThreshold: 2000,
		HeuristicPullCost:          10,
	}
}

// AStarNode is one waypoint of a reconstructed path: the position visited,
// paired with the Connection taken onward from it (nil for a pure grid
// step). The chain starts at start_pos and runs up to, but not including,
// the search's destination — the destination has no "onward" connection of
// its own, so callers that need it as a waypoint (the Itinerary Segmenter)
// supply it separately (spec §3/§4.4).
type AStarNode struct {
	Pos        typedef.Position
	Connection *typedef.Connection
}

// Expander is the Grid Expander contract (spec §4.2): neighbour expansion
// at a grid position. *worldmap.Map satisfies this directly — its
// Neighbours method returns []typedef.Neighbour, the same shape defined in
// typedef so both packages share one type.
type Expander interface {
	Neighbours(pos typedef.Position) []typedef.Neighbour
}
