package routeplan

import (
	"context"
	"math/rand"
	"time"

	"transitcore/pathfinder"
	"transitcore/typedef"
)

// Model is the subset of *worldmap.Map the planner depends on: the Grid
// Expander contract plus read-only Storage access, declared locally so
// routeplan stays decoupled from the concrete map implementation.
type Model interface {
	pathfinder.Expander
	typedef.Storage
}

// Planner is the core's exposed surface (spec §4.6): plan_route and
// build_cache, closed over the collaborators a search needs.
type Planner struct {
	Map    Model
	Oracle *pathfinder.Oracle
	Cache  *pathfinder.Cache
	Logger typedef.Logger
	Config pathfinder.SearchConfig
}

// NewPlanner wires a Planner over m (typically a *worldmap.Map, which
// satisfies both Expander and Storage), an optional heuristic cache, and a
// logger. rng seeds the Heuristic Oracle's sampling; nil uses a
// time-seeded generator.
func NewPlanner(m Model, cache *pathfinder.Cache, logger typedef.Logger, rng *rand.Rand) *Planner {
	if logger == nil {
		logger = typedef.NopLogger{}
	}
	return &Planner{
		Map:    m,
		Oracle: pathfinder.NewOracle(m, cache, rng),
		Cache:  cache,
		Logger: logger,
		Config: pathfinder.DefaultSearchConfig(),
	}
}

// PlanRoute runs the A* search between from and to and segments the result
// into an Itinerary (spec §4.6's plan_route). timeout of zero means no
// deadline. A NotReachable result comes back as an empty Itinerary with a
// nil error, per spec §7.
func (p *Planner) PlanRoute(from, to typedef.Position, timeout time.Duration) (typedef.Itinerary, error) {
	var deadline *time.Time
	if timeout > 0 {
		d := time.Now().Add(timeout)
		deadline = &d
	}

	result, err := pathfinder.Search(p.Map, p.Oracle, p.Config, from, to, deadline)
	if err != nil {
		p.Logger.Log(typedef.LogError, "plan_route: "+err.Error())
		return typedef.Itinerary{}, err
	}
	if !result.Reachable {
		p.Logger.Log(typedef.LogInfo, "plan_route: no path found")
		return typedef.Itinerary{}, nil
	}

	return Segment(p.Map, result.Chain, to), nil
}

// BuildCache precomputes the Heuristic Oracle over rect and persists it
// (spec §4.3/§4.6's build_cache).
func (p *Planner) BuildCache(ctx context.Context, rect typedef.Rect, workerCount int, progress pathfinder.ProgressFunc) error {
	if p.Cache == nil {
		return typedef.NewRouteError(typedef.ErrInvalidRequest, "build_cache requires a configured cache store")
	}
	if err := pathfinder.BuildCache(ctx, p.Oracle, p.Cache, rect, workerCount, progress); err != nil {
		p.Logger.Log(typedef.LogError, "build_cache: "+err.Error())
		return err
	}
	p.Logger.Log(typedef.LogInfo, "build_cache: complete")
	return nil
}
