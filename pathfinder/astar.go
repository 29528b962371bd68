package pathfinder

import (
	"container/heap"
	"time"

	"transitcore/typedef"
)

// HeuristicOracle is the Heuristic Oracle contract (spec §4.3): an estimate
// of distance-to-transit at a grid position, or ok=false when no station
// was found by whatever sampling/caching strategy the oracle uses.
type HeuristicOracle interface {
	Estimate(pos typedef.Position) (dist int, ok bool)
}

// Result is the outcome of a successful (non-timed-out) Search: either a
// node chain connecting start to end, or Reachable=false when no path
// exists (spec §4.4, §7 — NotReachable is a normal result, not an error).
type Result struct {
	Chain     []AStarNode
	Cost      map[typedef.Position]int
	Reachable bool
}

type prevEntry struct {
	pos        typedef.Position
	hasPos     bool // false only for the start sentinel
	connection *typedef.Connection
}

// astarItem is one entry of the open-set priority queue.
type astarItem struct {
	pos      typedef.Position
	priority int
	index    int
}

// astarQueue implements heap.Interface, styled after the teacher's
// AstarPriorityQueue (eruntime/pathfinder/astar.go): a flat slice ordered on
// priority with an Index field each element keeps in sync.
type astarQueue []*astarItem

func (q astarQueue) Len() int { return len(q) }

func (q astarQueue) Less(i, j int) bool {
	return q[i].priority < q[j].priority
}

func (q astarQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *astarQueue) Push(x any) {
	n := len(*q)
	item := x.(*astarItem)
	item.index = n
	*q = append(*q, item)
}

func (q *astarQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[0 : n-1]
	return item
}

// Search runs the A* route search of spec §4.4. expander is consulted for
// neighbours at every popped position (*worldmap.Map in production); oracle
// estimates distance-to-transit for the cost-shaping step; cfg tunes the
// thresholds of step 4c. A nil deadline means no timeout.
func Search(expander Expander, oracle HeuristicOracle, cfg SearchConfig, start, end typedef.Position, deadline *time.Time) (Result, error) {
	cost := map[typedef.Position]int{start: 0}
	prev := map[typedef.Position]prevEntry{start: {}}

	pq := &astarQueue{}
	heap.Init(pq)
	heap.Push(pq, &astarItem{pos: start, priority: 0})

	for pq.Len() > 0 {
		if deadline != nil && time.Now().After(*deadline) {
			return Result{}, typedef.NewRouteError(typedef.ErrTimeout, "search deadline exceeded")
		}

		current := heap.Pop(pq).(*astarItem).pos

		if current == end {
			return Result{Chain: reconstruct(prev, start, end), Cost: cost, Reachable: true}, nil
		}

		currentCost, ok := cost[current]
		if !ok {
			return Result{}, typedef.NewRouteError(typedef.ErrFatal, "popped position missing from cost map")
		}

		for _, n := range expander.Neighbours(current) {
			w := edgeCost(oracle, cfg, current, n)
			candidate := currentCost + w

			if existing, seen := cost[n.Pos]; !seen || candidate < existing {
				cost[n.Pos] = candidate
				prev[n.Pos] = prevEntry{pos: current, hasPos: true, connection: n.Connection}
				heap.Push(pq, &astarItem{pos: n.Pos, priority: candidate + typedef.Manhattan(n.Pos, end)})
			}
		}
	}

	return Result{Cost: cost, Reachable: false}, nil
}

// edgeCost implements step 4c exactly: the heuristic pull overrides any
// train discount once the oracle reports a nearby station; integer division
// on the train discount is deliberate (spec §9 design note).
func edgeCost(oracle HeuristicOracle, cfg SearchConfig, current typedef.Position, n typedef.Neighbour) int {
	dGrid := typedef.Manhattan(current, n.Pos)

	if transitDist, ok := oracle.Estimate(current); ok && transitDist < cfg.HeuristicDistanceThreshold {
		return cfg.HeuristicPullCost
	}

	if n.Connection != nil {
		if n.Connection.IsTrain {
			return dGrid/1000 + n.Connection.Weight
		}
		return dGrid + n.Connection.Weight
	}
	return dGrid
}

// reconstruct walks prev back from end to the start sentinel, emitting an
// AStarNode per step, then reverses (spec §4.4 Reconstruction). Each emitted
// node pairs a visited position with the connection taken onward from it;
// end itself is never represented as a node here — callers that need the
// final destination as a waypoint (the Itinerary Segmenter) consult it
// separately.
func reconstruct(prev map[typedef.Position]prevEntry, start, end typedef.Position) []AStarNode {
	var chain []AStarNode
	cur := end
	for {
		entry, ok := prev[cur]
		if !ok || !entry.hasPos {
			break
		}
		chain = append(chain, AStarNode{Pos: entry.pos, Connection: entry.connection})
		cur = entry.pos
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
