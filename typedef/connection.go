package typedef

import "errors"

var (
	// ErrConnectionSameEndpoint is returned when both endpoints of a
	// Connection would be the same Location.
	ErrConnectionSameEndpoint = errors.New("connection endpoints must be distinct locations")
)

// Connection is a bidirectional edge between two Locations: ownership is
// shared, both endpoint Locations reference the Connection and the
// Connection references both Locations, logically one edge.
type Connection struct {
	Weight      int
	IsTrain     bool
	Label       string
	Description string

	// Endpoints always holds exactly two distinct Locations.
	Endpoints [2]*Location
}

// NewConnection builds a Connection between a and b. Use worldmap.Map's
// AddConnection to register it so both endpoints see it.
func NewConnection(weight int, isTrain bool, label, description string, a, b *Location) (*Connection, error) {
	if a == nil || b == nil {
		return nil, ErrConnectionSameEndpoint
	}
	if a.ID == b.ID {
		return nil, ErrConnectionSameEndpoint
	}
	return &Connection{
		Weight:      weight,
		IsTrain:     isTrain,
		Label:       label,
		Description: description,
		Endpoints:   [2]*Location{a, b},
	}, nil
}

// Attach wires this Connection onto both of its endpoints. Called once by
// worldmap.Map.AddConnection when the Connection is first registered.
func (c *Connection) Attach() {
	c.Endpoints[0].addConnection(c)
	c.Endpoints[1].addConnection(c)
}

// Detach removes this Connection from both of its endpoints. Called by
// worldmap.Map.DeleteConnection.
func (c *Connection) Detach() {
	c.Endpoints[0].removeConnection(c)
	c.Endpoints[1].removeConnection(c)
}

// OtherSide returns the endpoint of c that is not loc, or nil if loc is not
// one of c's endpoints. It never returns loc itself.
func (c *Connection) OtherSide(loc *Location) *Location {
	if c.Endpoints[0] == loc {
		return c.Endpoints[1]
	}
	if c.Endpoints[1] == loc {
		return c.Endpoints[0]
	}
	return nil
}

// SetIsTrain changes the train flag and recomputes IsStation on both
// endpoints, matching the original's Connection.set_is_train.
func (c *Connection) SetIsTrain(isTrain bool) {
	c.IsTrain = isTrain
	c.Endpoints[0].updateIsStation()
	c.Endpoints[1].updateIsStation()
}
