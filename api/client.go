package api

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"transitcore/typedef"
)

// Client issues one-shot route requests against a Server, grounded on
// original_source/src/ServerNetworkInterface.py's ClientNetworkInterface /
// ClientNetworkProtocol.
type Client struct {
	Address string
	Dialer  net.Dialer
}

// NewClient returns a Client targeting address ("host:port").
func NewClient(address string) *Client {
	return &Client{Address: address}
}

// PlanRoute opens a connection, sends a route request for from->to, and
// waits for the single response. timeout, if non-zero, is relayed to the
// server as the search's wall-clock budget, not the dial/read timeout.
func (c *Client) PlanRoute(from, to typedef.Position, timeout time.Duration) ([]typedef.Leg, error) {
	conn, err := c.Dialer.Dial("tcp", c.Address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.Address, err)
	}
	defer conn.Close()

	req := RouteRequest{Type: "route", X1: from.X, Y1: from.Y, X2: to.X, Y2: to.Y}
	if timeout > 0 {
		ms := int(timeout / time.Millisecond)
		if ms == 0 {
			ms = 1
		}
		req.TimeoutMs = &ms
	}
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("send route request: %w", err)
	}

	dec := json.NewDecoder(conn)
	raw := json.RawMessage{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("read route response: %w", err)
	}

	var errResp ErrorResponse
	if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
		return nil, fmt.Errorf("server reported: %s", errResp.Error)
	}

	var legs []typedef.Leg
	if err := json.Unmarshal(raw, &legs); err != nil {
		return nil, fmt.Errorf("decode route legs: %w", err)
	}
	return legs, nil
}
