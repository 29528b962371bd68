package pathfinder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitcore/typedef"
	"transitcore/worldmap"
)

// noStationOracle never reports a nearby station, so edgeCost never takes
// the heuristic-pull branch — tests can reason about plain grid/train costs
// without depending on the Oracle's random sampling.
type noStationOracle struct{}

func (noStationOracle) Estimate(typedef.Position) (int, bool) { return 0, false }

func newTestMap(border typedef.Rect) *worldmap.Map {
	return worldmap.New(border)
}

func TestSearch_GridOnly(t *testing.T) {
	t.Parallel()
	m := newTestMap(typedef.Rect{MinX: -100, MaxX: 100, MinY: -100, MaxY: 100})

	result, err := Search(m, noStationOracle{}, DefaultSearchConfig(),
		typedef.Position{X: 0, Y: 0}, typedef.Position{X: 3, Y: 0}, nil)
	require.NoError(t, err)
	require.True(t, result.Reachable)
	assert.Equal(t, 3, result.Cost[typedef.Position{X: 3, Y: 0}])
}

func TestSearch_TrivialAdjacency(t *testing.T) {
	t.Parallel()
	m := newTestMap(typedef.Rect{MinX: -10, MaxX: 10, MinY: -10, MaxY: 10})

	_, err := m.AddLocation("a", "A", typedef.Position{X: 0, Y: 0}, "")
	require.NoError(t, err)
	_, err = m.AddLocation("b", "B", typedef.Position{X: 0, Y: 1}, "")
	require.NoError(t, err)
	_, err = m.AddConnection(1, false, "path", "", "a", "b")
	require.NoError(t, err)

	result, err := Search(m, noStationOracle{}, DefaultSearchConfig(),
		typedef.Position{X: 0, Y: 0}, typedef.Position{X: 0, Y: 1}, nil)
	require.NoError(t, err)
	require.True(t, result.Reachable)
	assert.Equal(t, 1, result.Cost[typedef.Position{X: 0, Y: 1}])
}

func TestSearch_Unreachable(t *testing.T) {
	t.Parallel()
	// Two single-cell "islands" with a border that excludes everything
	// between them: the grid expander can't step across the gap and there
	// are no connections, so A must exhaust its open set.
	m := newTestMap(typedef.Rect{MinX: 0, MaxX: 0, MinY: 0, MaxY: 0})

	result, err := Search(m, noStationOracle{}, DefaultSearchConfig(),
		typedef.Position{X: 0, Y: 0}, typedef.Position{X: 5, Y: 5}, nil)
	require.NoError(t, err)
	assert.False(t, result.Reachable)
	assert.Nil(t, result.Chain)
}

func TestSearch_Timeout(t *testing.T) {
	t.Parallel()
	m := newTestMap(typedef.Rect{MinX: -1_000_000, MaxX: 1_000_000, MinY: -1_000_000, MaxY: 1_000_000})

	past := time.Now().Add(-time.Second)
	_, err := Search(m, noStationOracle{}, DefaultSearchConfig(),
		typedef.Position{X: -500_000, Y: -500_000}, typedef.Position{X: 500_000, Y: 500_000}, &past)
	require.Error(t, err)
	assert.True(t, typedef.IsTimeout(err))
}

func TestSearch_ChainSoundnessAndMonotonicity(t *testing.T) {
	t.Parallel()
	m := newTestMap(typedef.Rect{MinX: -10, MaxX: 10, MinY: -10, MaxY: 10})
	start := typedef.Position{X: -2, Y: 0}
	end := typedef.Position{X: 2, Y: 3}

	result, err := Search(m, noStationOracle{}, DefaultSearchConfig(), start, end, nil)
	require.NoError(t, err)
	require.True(t, result.Reachable)
	require.NotEmpty(t, result.Chain)

	assert.Equal(t, start, result.Chain[0].Pos, "chain begins at start_pos")

	full := append(append([]typedef.Position{}, positionsOf(result.Chain)...), end)
	prevCost := result.Cost[full[0]]
	for i := 1; i < len(full); i++ {
		g, ok := result.Cost[full[i]]
		require.True(t, ok)
		assert.GreaterOrEqual(t, g, prevCost, "reconstructed cost must be non-decreasing along the path")
		prevCost = g

		neighbours := m.Neighbours(full[i-1])
		found := false
		for _, n := range neighbours {
			if n.Pos == full[i] {
				found = true
				break
			}
		}
		assert.True(t, found, "each adjacent pair in the chain must be a Grid Expander neighbour")
	}
}

func positionsOf(chain []AStarNode) []typedef.Position {
	out := make([]typedef.Position, len(chain))
	for i, n := range chain {
		out[i] = n.Pos
	}
	return out
}
