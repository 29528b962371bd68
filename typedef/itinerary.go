package typedef

import "fmt"

// LegKind tags the kind of travel segment a Leg represents (spec §3/§4.5).
type LegKind string

const (
	LegWalk         LegKind = "walk"
	LegBoardTrain   LegKind = "board_train"
	LegLeaveTrain   LegKind = "leave_train"
	LegChangeTrain  LegKind = "change_train"
	LegEnterStreet  LegKind = "enter_street"
	LegChangeStreet LegKind = "change_street"
)

// LocationInfo is the Location metadata attached to a PositionInfo or a
// train stop, per spec §6's {label, position} shape.
type LocationInfo struct {
	Label    string   `json:"label"`
	Position Position `json:"position"`
}

// ConnectionInfo is the Connection metadata attached to a boarding/changing
// leg's "to" endpoint.
type ConnectionInfo struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// PositionInfo is one endpoint of a Leg: a raw position plus whatever
// optional metadata that endpoint carries. NumStops/Stops are only set on
// the "to" endpoint of LeaveTrain/ChangeTrain legs; Connection is only set
// on the "to" endpoint of BoardTrain/ChangeTrain legs.
type PositionInfo struct {
	Pos        Position        `json:"position"`
	Location   *LocationInfo   `json:"location,omitempty"`
	NumStops   *int            `json:"num_stops,omitempty"`
	Stops      []LocationInfo  `json:"stops,omitempty"`
	Connection *ConnectionInfo `json:"connection,omitempty"`
}

// Leg is one contiguous travel segment of a single kind in an Itinerary.
type Leg struct {
	Type     LegKind      `json:"type"`
	From     PositionInfo `json:"from"`
	To       PositionInfo `json:"to"`
	Distance int          `json:"distance"`
}

// Itinerary is the ordered sequence of Legs returned by a successful
// plan_route call. An empty Itinerary denotes NotReachable, which spec §7
// treats as a normal (non-error) result.
type Itinerary struct {
	Legs []Leg `json:"legs"`
}

// Describe renders a Leg as the human-readable text
// original_source/src/RoutePlanner.py's RoutePath.write_route_text produces,
// a feature the spec distillation dropped that cmd/client restores.
func (l Leg) Describe() string {
	fromText := positionText(l.From)
	toText := positionText(l.To)

	switch l.Type {
	case LegBoardTrain:
		name := "the train"
		if l.To.Connection != nil {
			name = l.To.Connection.Label
		}
		return fmt.Sprintf("Board the %s", name)
	case LegLeaveTrain:
		return fmt.Sprintf("Leave the train at %s %s", toText, stopsText(l.To.NumStops))
	case LegChangeTrain:
		name := "the train"
		if l.To.Connection != nil {
			name = l.To.Connection.Label
		}
		return fmt.Sprintf("Change trains at %s %s for the %s", toText, stopsText(l.To.NumStops), name)
	default:
		return fmt.Sprintf("Walk %d blocks from %s to %s", l.Distance, fromText, toText)
	}
}

func positionText(p PositionInfo) string {
	if p.Location != nil {
		return fmt.Sprintf("%s (%s)", p.Pos, p.Location.Label)
	}
	return p.Pos.String()
}

func stopsText(numStops *int) string {
	n := 1
	if numStops != nil {
		n = *numStops
	}
	suffix := "s"
	if n == 1 {
		suffix = ""
	}
	return fmt.Sprintf("(%d stop%s)", n, suffix)
}
