package pathfinder

import (
	"math"
	"math/rand"

	"transitcore/typedef"
)

// Cache is the Heuristic Oracle's short-circuit collaborator: a thin
// wrapper around typedef.HeuristicCacheStore keyed by Position (spec §4.3,
// §6). The "heuristic" namespace is fixed; callers never see the raw
// namespaced-key shape.
type Cache struct {
	store     typedef.HeuristicCacheStore
	namespace string
}

// NewCache wraps store under the fixed "heuristic" namespace.
func NewCache(store typedef.HeuristicCacheStore) *Cache {
	return &Cache{store: store, namespace: "heuristic"}
}

// Get returns the cached value for pos. ok=false means "not cached", which
// is distinct from a cached nil meaning "no station found nearby" — callers
// must not conflate the two (spec §4.3).
func (c *Cache) Get(pos typedef.Position) (value *int, ok bool) {
	if c == nil || c.store == nil {
		return nil, false
	}
	return c.store.Get(c.namespace, pos.Key())
}

// Set records value (nil allowed) for pos.
func (c *Cache) Set(pos typedef.Position, value *int) {
	if c == nil || c.store == nil {
		return
	}
	c.store.Set(c.namespace, pos.Key(), value)
}

// Load reads the cache contents from path.
func (c *Cache) Load(path string) error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Load(path)
}

// Save persists the cache contents to path.
func (c *Cache) Save(path string) error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Save(path)
}

// Oracle implements HeuristicOracle (spec §4.3): cheap estimation of
// distance-to-transit by sampling a fraction of the known Locations, with a
// cache short-circuit. rng is injected so tests can seed it deterministically
// (spec §9 design note); production callers pass a time-seeded one.
type Oracle struct {
	storage typedef.Storage
	cache   *Cache
	rng     *rand.Rand
}

// NewOracle builds an Oracle over storage. cache may be nil (no
// short-circuit); rng may be nil, in which case a time-seeded generator is
// used.
func NewOracle(storage typedef.Storage, cache *Cache, rng *rand.Rand) *Oracle {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Oracle{storage: storage, cache: cache, rng: rng}
}

// Estimate returns the estimated Manhattan distance from pos to the nearest
// station, or ok=false if no station was found among the sampled Locations
// (or, with a cache hit, whatever the cache recorded).
func (o *Oracle) Estimate(pos typedef.Position) (int, bool) {
	if cached, ok := o.cache.Get(pos); ok {
		if cached == nil {
			return 0, false
		}
		return *cached, true
	}
	return o.sample(pos, o.storage.Locations())
}

// sample draws ceil(len(locations)/8) distinct Locations without
// replacement and returns the minimum Manhattan distance among the sampled
// stations (spec §4.3).
func (o *Oracle) sample(pos typedef.Position, locations []*typedef.Location) (int, bool) {
	n := len(locations)
	if n == 0 {
		return 0, false
	}
	checkCount := int(math.Ceil(float64(n) / 8))

	chosen := make(map[int]struct{}, checkCount)
	for len(chosen) < checkCount {
		idx := o.rng.Intn(n)
		chosen[idx] = struct{}{}
	}

	minDist := 0
	found := false
	for idx := range chosen {
		loc := locations[idx]
		if !loc.IsStation {
			continue
		}
		dist := typedef.Manhattan(pos, loc.Pos)
		if !found || dist < minDist {
			minDist = dist
			found = true
		}
	}
	return minDist, found
}

// EstimateExact computes the oracle value against the full Location set
// rather than a sample, as the cache build (spec §4.3 Precomputation)
// requires.
func (o *Oracle) EstimateExact(pos typedef.Position) (int, bool) {
	minDist := 0
	found := false
	for _, loc := range o.storage.Locations() {
		if !loc.IsStation {
			continue
		}
		dist := typedef.Manhattan(pos, loc.Pos)
		if !found || dist < minDist {
			minDist = dist
			found = true
		}
	}
	return minDist, found
}
