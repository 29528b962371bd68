// Package routeplan converts a raw A* node chain into a typed Itinerary and
// orchestrates the plan_route/build_cache operations the core exposes
// (spec §4.5, §4.6).
package routeplan

import (
	"transitcore/pathfinder"
	"transitcore/typedef"
)

// segmentState is the Itinerary Segmenter's running state while scanning an
// AStarNode chain (spec §4.5).
type segmentState struct {
	storage     typedef.Storage
	anchor      *pathfinder.AStarNode
	onTrain     bool
	stopsBuffer []pathfinder.AStarNode
	legs        []typedef.Leg
}

// Segment converts the AStarNode chain produced by pathfinder.Search into an
// ordered sequence of Legs. end is the search's destination; it is never
// itself represented in chain (chain holds each visited waypoint paired
// with the Connection taken onward from it — see pathfinder.Search's
// reconstruction), so Segment treats it as the final, connection-less
// waypoint the scan closes out against.
func Segment(storage typedef.Storage, chain []pathfinder.AStarNode, end typedef.Position) typedef.Itinerary {
	if len(chain) == 0 {
		return typedef.Itinerary{}
	}

	st := &segmentState{storage: storage}
	for _, p := range chain {
		st.step(p)
	}
	st.finalize(pathfinder.AStarNode{Pos: end})

	return typedef.Itinerary{Legs: st.legs}
}

// step processes one node of the chain against the current anchor/on_train
// state (spec §4.5 Transitions). The very first call both initialises the
// anchor and evaluates p against it in the same pass: since anchor==p at
// that point, the position-identity checks below (anchor != p) naturally
// skip any spurious leg, while the connection-kind checks (board/change)
// still fire — this is what lets a search that starts already on a train
// emit its BoardTrain leg.
func (st *segmentState) step(p pathfinder.AStarNode) {
	if st.anchor == nil {
		anchor := p
		st.anchor = &anchor
	}

	switch {
	case p.Connection != nil && p.Connection.IsTrain:
		st.onTrainStep(p)
	case p.Connection != nil:
		st.streetStep(p)
	default:
		st.gridStep(p)
	}
}

func (st *segmentState) onTrainStep(p pathfinder.AStarNode) {
	if !st.onTrain {
		if *st.anchor != p {
			st.emit(typedef.LegWalk, *st.anchor, p, nil)
		}
		st.emit(typedef.LegBoardTrain, p, p, nil)
		st.onTrain = true
		st.setAnchor(p)
		return
	}
	if p.Connection.Label != st.anchor.Connection.Label {
		st.emit(typedef.LegChangeTrain, *st.anchor, p, nil)
		st.onTrain = true
		st.setAnchor(p)
		return
	}
	st.stopsBuffer = append(st.stopsBuffer, p)
}

func (st *segmentState) streetStep(p pathfinder.AStarNode) {
	if st.onTrain {
		st.emit(typedef.LegLeaveTrain, *st.anchor, p, nil)
		st.onTrain = false
		st.setAnchor(p)
		return
	}
	switch {
	case st.anchor.Connection != nil && !st.anchor.Connection.IsTrain:
		st.emit(typedef.LegChangeStreet, *st.anchor, p, nil)
	default:
		st.emit(typedef.LegEnterStreet, *st.anchor, p, nil)
	}
	st.setAnchor(p)
}

func (st *segmentState) gridStep(p pathfinder.AStarNode) {
	if st.onTrain {
		st.emit(typedef.LegLeaveTrain, *st.anchor, p, nil)
		st.onTrain = false
		st.setAnchor(p)
	}
	// otherwise: grid steps with no connection coalesce into the next Walk.
}

// finalize closes out the scan against the search's destination: an
// in-progress train ride must still be left, and any coalesced grid walk
// still pending must still be emitted (spec §4.5 "After the scan").
func (st *segmentState) finalize(last pathfinder.AStarNode) {
	if st.onTrain {
		st.emit(typedef.LegLeaveTrain, *st.anchor, last, nil)
		st.onTrain = false
		st.setAnchor(last)
		return
	}
	if st.anchor.Pos != last.Pos {
		st.emit(typedef.LegWalk, *st.anchor, last, nil)
	}
}

func (st *segmentState) setAnchor(p pathfinder.AStarNode) {
	st.stopsBuffer = nil
	anchor := p
	st.anchor = &anchor
}

// emit decorates and appends one Leg. stops is accepted for callers that
// already computed a stop list; nil lets emit fall back to st.stopsBuffer.
func (st *segmentState) emit(kind typedef.LegKind, from, to pathfinder.AStarNode, stops []pathfinder.AStarNode) {
	if stops == nil {
		stops = st.stopsBuffer
	}
	st.legs = append(st.legs, typedef.Leg{
		Type:     kind,
		From:     st.positionInfo(from, kind, false),
		To:       st.positionInfo(to, kind, true, stops...),
		Distance: typedef.Manhattan(from.Pos, to.Pos),
	})
}

// positionInfo builds the PositionInfo for one endpoint of a Leg, attaching
// Location metadata when a Location sits at that position, and — for the
// "to" endpoint only — num_stops/stops (Leave/Change) or connection
// (Board/Change) per spec §4.5/§6.
func (st *segmentState) positionInfo(node pathfinder.AStarNode, kind typedef.LegKind, isTo bool, stops ...pathfinder.AStarNode) typedef.PositionInfo {
	info := typedef.PositionInfo{Pos: node.Pos}

	if loc, ok := st.storage.LocationAt(node.Pos); ok {
		info.Location = &typedef.LocationInfo{Label: loc.Label, Position: loc.Pos}
	}

	if !isTo {
		return info
	}

	switch kind {
	case typedef.LegLeaveTrain, typedef.LegChangeTrain:
		n := len(stops) + 1
		info.NumStops = &n
		info.Stops = make([]typedef.LocationInfo, 0, len(stops))
		for _, s := range stops {
			if loc, ok := st.storage.LocationAt(s.Pos); ok {
				info.Stops = append(info.Stops, typedef.LocationInfo{Label: loc.Label, Position: loc.Pos})
			} else {
				info.Stops = append(info.Stops, typedef.LocationInfo{Position: s.Pos})
			}
		}
	}

	switch kind {
	case typedef.LegBoardTrain, typedef.LegChangeTrain:
		if node.Connection != nil {
			info.Connection = &typedef.ConnectionInfo{Label: node.Connection.Label, Description: node.Connection.Description}
		}
	}

	return info
}
