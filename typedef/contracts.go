package typedef

// Storage is the read-only collaborator the core consults during a search
// (spec §4.6). Writes come through Map mutation operations invoked by the
// editor collaborator, never through this interface.
type Storage interface {
	Locations() []*Location
	Connections() []*Connection
	LocationAt(pos Position) (*Location, bool)
	LocationByID(id string) (*Location, bool)
}

// HeuristicCacheStore is the persistence contract for the heuristic cache
// (spec §4.3/§4.6): a namespaced keyed store of optional ints, backed by a
// gzip-compressed file on disk. A nil value with ok=true means "cached: no
// station found nearby"; ok=false means "not cached" (not "no station
// nearby") — callers must not conflate the two.
type HeuristicCacheStore interface {
	Load(path string) error
	Save(path string) error
	Get(namespace, key string) (value *int, ok bool)
	Set(namespace, key string, value *int)
}
