// Package worldmap implements the Map Model (spec §4.1): the aggregate of
// Locations and Connections, indexed by id, by grid position, and as a flat
// list, kept consistent across add/update/delete.
package worldmap

import (
	"sync"

	"transitcore/typedef"
)

// Map is the aggregate over Locations and Connections. It is loaded at
// startup from a Storage collaborator and mutated only through the methods
// below, which keep the by-id, by-pos, and list indices consistent. Per
// spec §5 the Map itself must not be mutated while a search is in flight;
// the RWMutex here protects the indices from concurrent editor mutations,
// it is not a substitute for that external search/mutation serialization.
type Map struct {
	mu     sync.RWMutex
	byID   map[string]*typedef.Location
	byPos  map[typedef.Position]*typedef.Location
	list   []*typedef.Location
	conns  []*typedef.Connection
	border typedef.Rect
}

// New creates an empty Map bounded by border.
func New(border typedef.Rect) *Map {
	return &Map{
		byID:   make(map[string]*typedef.Location),
		byPos:  make(map[typedef.Position]*typedef.Location),
		border: border,
	}
}

// Border returns the configured world border rectangle.
func (m *Map) Border() typedef.Rect {
	return m.border
}

// Locations returns every Location, in insertion order.
func (m *Map) Locations() []*typedef.Location {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*typedef.Location, len(m.list))
	copy(out, m.list)
	return out
}

// Connections returns every Connection.
func (m *Map) Connections() []*typedef.Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*typedef.Connection, len(m.conns))
	copy(out, m.conns)
	return out
}

// LocationAt returns the Location occupying pos, if any.
func (m *Map) LocationAt(pos typedef.Position) (*typedef.Location, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	loc, ok := m.byPos[pos]
	return loc, ok
}

// LocationByID returns the Location with the given id, if any.
func (m *Map) LocationByID(id string) (*typedef.Location, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	loc, ok := m.byID[id]
	return loc, ok
}

// AddLocation creates and indexes a new Location. Fails with
// DuplicateKeyError if id or pos already belongs to a live Location.
func (m *Map) AddLocation(id, label string, pos typedef.Position, description string) (*typedef.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[id]; exists {
		return nil, &typedef.DuplicateKeyError{Field: "id", Value: id}
	}
	if _, exists := m.byPos[pos]; exists {
		return nil, &typedef.DuplicateKeyError{Field: "pos", Value: pos.String()}
	}

	loc, err := typedef.NewLocation(id, label, pos, description)
	if err != nil {
		return nil, err
	}
	m.byID[id] = loc
	m.byPos[pos] = loc
	m.list = append(m.list, loc)
	return loc, nil
}

// UpdateLocation renames/moves/relabels loc. If id or pos changes, the old
// index entries are retired and the new ones installed atomically from the
// caller's viewpoint, using loc's PrevID/PrevPos bookkeeping (spec §4.1).
func (m *Map) UpdateLocation(loc *typedef.Location, newID string, newPos typedef.Position, newLabel, newDescription string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if newID == "" {
		return typedef.ErrLocationIDEmpty
	}

	if newID != loc.ID {
		if existing, exists := m.byID[newID]; exists && existing != loc {
			return &typedef.DuplicateKeyError{Field: "id", Value: newID}
		}
	}
	if newPos != loc.Pos {
		if existing, exists := m.byPos[newPos]; exists && existing != loc {
			return &typedef.DuplicateKeyError{Field: "pos", Value: newPos.String()}
		}
	}

	loc.SetID(newID)
	loc.SetPos(newPos)
	loc.Label = newLabel
	loc.Description = newDescription

	m.reindexLocked(loc)
	return nil
}

// reindexLocked retires loc's stale by-id/by-pos entries (if any) and
// installs the current ones. Callers must hold m.mu.
func (m *Map) reindexLocked(loc *typedef.Location) {
	if loc.PrevID != nil {
		delete(m.byID, *loc.PrevID)
	}
	m.byID[loc.ID] = loc

	if loc.PrevPos != nil {
		delete(m.byPos, *loc.PrevPos)
	}
	m.byPos[loc.Pos] = loc

	loc.ClearPrev()
}

// DeleteLocation removes loc and cascades: every Connection incident to it
// is also removed (from both its endpoints and from the Map).
func (m *Map) DeleteLocation(loc *typedef.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[loc.ID]; !exists {
		return typedef.NewRouteError(typedef.ErrStorageInconsistency, "delete: unknown location "+loc.ID)
	}

	// Copy: deleteConnectionLocked mutates loc.Connections as it detaches.
	incident := make([]*typedef.Connection, len(loc.Connections))
	copy(incident, loc.Connections)
	for _, c := range incident {
		m.deleteConnectionLocked(c)
	}

	delete(m.byID, loc.ID)
	delete(m.byPos, loc.Pos)
	for i, l := range m.list {
		if l == loc {
			m.list = append(m.list[:i], m.list[i+1:]...)
			break
		}
	}
	return nil
}

// AddConnection creates a Connection between the Locations identified by
// fromID and toID, wires it onto both endpoints, and recomputes their
// IsStation.
func (m *Map) AddConnection(weight int, isTrain bool, label, description, fromID, toID string) (*typedef.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	from, ok := m.byID[fromID]
	if !ok {
		return nil, typedef.NewRouteError(typedef.ErrStorageInconsistency, "no such location '"+fromID+"'")
	}
	to, ok := m.byID[toID]
	if !ok {
		return nil, typedef.NewRouteError(typedef.ErrStorageInconsistency, "no such location '"+toID+"'")
	}

	conn, err := typedef.NewConnection(weight, isTrain, label, description, from, to)
	if err != nil {
		return nil, err
	}
	conn.Attach()
	m.conns = append(m.conns, conn)
	return conn, nil
}

// UpdateConnection changes a Connection's weight/train flag/label/
// description in place, recomputing both endpoints' IsStation if the train
// flag changed.
func (m *Map) UpdateConnection(conn *typedef.Connection, weight int, isTrain bool, label, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn.Weight = weight
	conn.Label = label
	conn.Description = description
	conn.SetIsTrain(isTrain)
	return nil
}

// DeleteConnection removes conn from both endpoints and from the Map,
// recomputing both endpoints' IsStation.
func (m *Map) DeleteConnection(conn *typedef.Connection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteConnectionLocked(conn)
}

func (m *Map) deleteConnectionLocked(conn *typedef.Connection) error {
	conn.Detach()
	for i, c := range m.conns {
		if c == conn {
			m.conns = append(m.conns[:i], m.conns[i+1:]...)
			return nil
		}
	}
	return typedef.NewRouteError(typedef.ErrStorageInconsistency, "delete: connection not registered with this map")
}
