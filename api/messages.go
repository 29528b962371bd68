package api

import "transitcore/typedef"

// RouteRequest is the one-shot wire request of spec §6: a JSON object with
// type "route", integer endpoints x1/y1/x2/y2, and an optional timeout in
// milliseconds. Grounds on original_source/src/ServerNetworkInterface.py's
// NetworkProtocol.data_received, which validates exactly these fields
// before invoking the planner.
type RouteRequest struct {
	Type      string `json:"type"`
	X1        int    `json:"x1"`
	Y1        int    `json:"y1"`
	X2        int    `json:"x2"`
	Y2        int    `json:"y2"`
	TimeoutMs *int   `json:"timeout,omitempty"`
}

// ErrorResponse is written back for a malformed request or a search
// timeout (spec §7).
type ErrorResponse struct {
	Error string `json:"error"`
}

// routeResponse is a successful route's wire shape: the bare leg array the
// Python original's data_received writes back (a JSON array, not an
// object), so Itinerary.Legs is marshaled directly rather than wrapped.
type routeResponse = []typedef.Leg
