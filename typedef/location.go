package typedef

import "errors"

var (
	// ErrLocationIDEmpty is returned when a Location is created or renamed
	// to an empty id.
	ErrLocationIDEmpty = errors.New("location id cannot be empty")
)

// Location is a named point on the grid. IsStation is derived: it is true
// whenever the Location is incident to at least one train Connection, and is
// kept up to date by worldmap whenever Connections are attached, detached, or
// retyped.
type Location struct {
	ID          string
	Label       string
	Pos         Position
	Description string
	IsStation   bool

	// Connections lists every Connection incident to this Location. Both
	// sides of a Connection hold each other's pointer; there are no
	// dangling back-references, all traversal goes through worldmap.Map.
	Connections []*Connection

	// PrevID/PrevPos record the identity this Location had before the most
	// recent in-flight rename/move, so the owning Map's indices can retire
	// the stale by-id/by-pos entries and install the new ones atomically.
	// Cleared once the Map has reindexed the Location.
	PrevID  *string
	PrevPos *Position
}

// NewLocation constructs a Location with no connections yet. Use
// worldmap.Map.AddLocation to register it so it participates in lookups.
func NewLocation(id, label string, pos Position, description string) (*Location, error) {
	if id == "" {
		return nil, ErrLocationIDEmpty
	}
	return &Location{
		ID:          id,
		Label:       label,
		Pos:         pos,
		Description: description,
	}, nil
}

// SetID stashes the current id in PrevID and installs the new one. The
// owning Map must call Reindex afterwards.
func (l *Location) SetID(id string) {
	prev := l.ID
	l.PrevID = &prev
	l.ID = id
}

// SetPos stashes the current position in PrevPos and installs the new one.
// The owning Map must call Reindex afterwards.
func (l *Location) SetPos(pos Position) {
	prev := l.Pos
	l.PrevPos = &prev
	l.Pos = pos
}

// ClearPrev drops the stashed previous id/pos once a Map has reindexed them.
func (l *Location) ClearPrev() {
	l.PrevID = nil
	l.PrevPos = nil
}

// updateIsStation recomputes IsStation from the current Connections list.
func (l *Location) updateIsStation() {
	for _, c := range l.Connections {
		if c.IsTrain {
			l.IsStation = true
			return
		}
	}
	l.IsStation = false
}

// addConnection attaches c to this Location and refreshes IsStation.
func (l *Location) addConnection(c *Connection) {
	l.Connections = append(l.Connections, c)
	if c.IsTrain {
		l.IsStation = true
	}
}

// removeConnection detaches c from this Location and refreshes IsStation.
func (l *Location) removeConnection(c *Connection) {
	for i, existing := range l.Connections {
		if existing == c {
			l.Connections = append(l.Connections[:i], l.Connections[i+1:]...)
			break
		}
	}
	l.updateIsStation()
}
