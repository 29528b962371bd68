package api

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"time"

	"transitcore/routeplan"
	"transitcore/typedef"
)

// Server is the one-shot TCP/JSON route protocol of spec §6: each
// connection sends a single request object and receives a single response
// before the connection closes. Grounds on
// original_source/src/ServerNetworkInterface.py's ServerNetworkInterface /
// NetworkProtocol, translating asyncio.Protocol's connection_made /
// data_received callbacks into a goroutine-per-connection net.Listener
// loop (the idiomatic Go shape for the same one-shot-request pattern).
type Server struct {
	Planner *routeplan.Planner
	Logger  typedef.Logger
}

// NewServer returns a Server ready to Serve.
func NewServer(planner *routeplan.Planner, logger typedef.Logger) *Server {
	if logger == nil {
		logger = typedef.NopLogger{}
	}
	return &Server{Planner: planner, Logger: logger}
}

// Serve accepts connections on ln and handles them until the listener is
// closed or ln.Accept returns any other error.
func (s *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.handleConn(conn)
	}
}

// ListenAndServe opens a TCP listener at address and serves it.
func (s *Server) ListenAndServe(address string) error {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}
	defer ln.Close()
	s.Logger.Log(typedef.LogInfo, "listening on "+address)
	return s.Serve(ln)
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	var req RouteRequest
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		s.writeError(conn, "Invalid")
		return
	}
	if req.Type != "route" {
		s.writeError(conn, "Invalid")
		return
	}

	timeout := time.Duration(0)
	if req.TimeoutMs != nil {
		timeout = time.Duration(*req.TimeoutMs) * time.Millisecond
	}

	from := typedef.Position{X: req.X1, Y: req.Y1}
	to := typedef.Position{X: req.X2, Y: req.Y2}

	itinerary, err := s.Planner.PlanRoute(from, to, timeout)
	if err != nil {
		if typedef.IsTimeout(err) {
			s.writeError(conn, "timeout")
			return
		}
		s.Logger.Log(typedef.LogError, "route request failed: "+err.Error())
		s.writeError(conn, "Invalid")
		return
	}

	s.writeJSON(conn, routeResponse(itinerary.Legs))
}

func (s *Server) writeJSON(conn net.Conn, v any) {
	if err := json.NewEncoder(conn).Encode(v); err != nil {
		s.Logger.Log(typedef.LogWarning, "write response: "+err.Error())
	}
}

func (s *Server) writeError(conn net.Conn, reason string) {
	if err := json.NewEncoder(conn).Encode(ErrorResponse{Error: reason}); err != nil {
		log.Printf("write error response: %v", err)
	}
}
