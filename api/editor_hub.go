package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"transitcore/typedef"
	"transitcore/worldmap"
)

// ErrNothingToUndo is returned by Undo when the undo stack is empty.
var ErrNothingToUndo = errors.New("nothing to undo")

// maxUndoDepth bounds the hub's undo stack so a long editing session can't
// grow it without limit.
const maxUndoDepth = 50

// MessageType tags a hub message, mirroring the teacher's api/typedef.go
// MessageType string constants.
type MessageType string

const (
	MessageTypeAck               MessageType = "ack"
	MessageTypeError             MessageType = "error"
	MessageTypeLocationAdded     MessageType = "location_added"
	MessageTypeLocationMoved     MessageType = "location_moved"
	MessageTypeLocationRemoved   MessageType = "location_removed"
	MessageTypeConnectionAdded   MessageType = "connection_added"
	MessageTypeConnectionRemoved MessageType = "connection_removed"
	MessageTypeUndone            MessageType = "undone"
)

// WSMessage is the hub's broadcast envelope, grounded on the teacher's
// api/typedef.go WSMessage{Type, RequestID, Data, Error, Timestamp}.
type WSMessage struct {
	Type      MessageType `json:"type"`
	Data      any         `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsClient is one connected editor session.
type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan WSMessage
}

// EditorHub serializes the Map mutations made through it (and Undo) with
// each other, and broadcasts every successful mutation to every connected
// session. Route searches do not take the hub's lock.
// Grounds on the teacher's api/api.go API hub: register/unregister/
// broadcast channels plus a per-client buffered send channel, repointed
// from simulation state ticks to worldmap.Map mutation events.
type EditorHub struct {
	mapMu sync.RWMutex // held for the duration of a single mutation; released before the broadcast
	Map   *worldmap.Map

	undoMu    sync.Mutex
	undoStack [][]byte // lz4-compressed worldmap.Document snapshots, oldest first

	mu         sync.Mutex
	clients    map[*wsClient]bool
	broadcast  chan WSMessage
	register   chan *wsClient
	unregister chan *wsClient

	Logger typedef.Logger
}

// NewEditorHub returns a hub wrapping m. Call Run in a goroutine before
// serving HTTP.
func NewEditorHub(m *worldmap.Map, logger typedef.Logger) *EditorHub {
	if logger == nil {
		logger = typedef.NopLogger{}
	}
	return &EditorHub{
		Map:        m,
		clients:    make(map[*wsClient]bool),
		broadcast:  make(chan WSMessage, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		Logger:     logger,
	}
}

// Run processes register/unregister/broadcast events until stopped. Call
// it in its own goroutine.
func (h *EditorHub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.trySend(c, WSMessage{Type: MessageTypeAck, Timestamp: time.Now()})
			h.Logger.Log(typedef.LogInfo, "editor client connected: "+c.id)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.Logger.Log(typedef.LogInfo, "editor client disconnected: "+c.id)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				h.trySend(c, msg)
			}
			h.mu.Unlock()
		}
	}
}

func (h *EditorHub) trySend(c *wsClient, msg WSMessage) {
	select {
	case c.send <- msg:
	default:
		close(c.send)
		delete(h.clients, c)
	}
}

// ServeHTTP upgrades the request to a websocket and registers the
// resulting client with the hub.
func (h *EditorHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Log(typedef.LogWarning, "websocket upgrade: "+err.Error())
		return
	}

	c := &wsClient{id: uuid.NewString(), conn: conn, send: make(chan WSMessage, 256)}
	h.register <- c

	go h.writePump(c)
	go h.readPump(c)
}

func (h *EditorHub) writePump(c *wsClient) {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards inbound frames (the editor's mutation requests arrive
// over the same CLI-driven API the core exposes, not over this socket) but
// must keep reading so the connection's close/ping control frames are
// processed, per gorilla/websocket's documented client contract.
func (h *EditorHub) readPump(c *wsClient) {
	defer func() { h.unregister <- c }()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// AddLocation mutates the map and broadcasts the change to every connected
// editor session. mapMu excludes other hub mutations for the duration of
// the mutation; it is not taken by route searches. A snapshot taken just before
// the mutation is pushed onto the undo stack so Undo can reverse it.
func (h *EditorHub) AddLocation(id, label string, pos typedef.Position, description string) (*typedef.Location, error) {
	h.mapMu.Lock()
	snap, err := h.Map.Snapshot()
	if err != nil {
		h.mapMu.Unlock()
		return nil, err
	}
	loc, err := h.Map.AddLocation(id, label, pos, description)
	if err != nil {
		h.mapMu.Unlock()
		return nil, err
	}
	h.pushUndo(snap)
	h.mapMu.Unlock()
	h.broadcastEvent(MessageTypeLocationAdded, loc)
	return loc, nil
}

// MoveLocation relocates/renames loc and broadcasts the change.
func (h *EditorHub) MoveLocation(loc *typedef.Location, newID string, newPos typedef.Position, newLabel, newDescription string) error {
	h.mapMu.Lock()
	snap, err := h.Map.Snapshot()
	if err != nil {
		h.mapMu.Unlock()
		return err
	}
	if err := h.Map.UpdateLocation(loc, newID, newPos, newLabel, newDescription); err != nil {
		h.mapMu.Unlock()
		return err
	}
	h.pushUndo(snap)
	h.mapMu.Unlock()
	h.broadcastEvent(MessageTypeLocationMoved, loc)
	return nil
}

// RemoveLocation deletes loc (and its incident connections) and broadcasts
// the change.
func (h *EditorHub) RemoveLocation(loc *typedef.Location) error {
	id := loc.ID
	h.mapMu.Lock()
	snap, err := h.Map.Snapshot()
	if err != nil {
		h.mapMu.Unlock()
		return err
	}
	if err := h.Map.DeleteLocation(loc); err != nil {
		h.mapMu.Unlock()
		return err
	}
	h.pushUndo(snap)
	h.mapMu.Unlock()
	h.broadcastEvent(MessageTypeLocationRemoved, map[string]string{"id": id})
	return nil
}

// AddConnection links two locations and broadcasts the change.
func (h *EditorHub) AddConnection(weight int, isTrain bool, label, description, fromID, toID string) (*typedef.Connection, error) {
	h.mapMu.Lock()
	snap, err := h.Map.Snapshot()
	if err != nil {
		h.mapMu.Unlock()
		return nil, err
	}
	conn, err := h.Map.AddConnection(weight, isTrain, label, description, fromID, toID)
	if err != nil {
		h.mapMu.Unlock()
		return nil, err
	}
	h.pushUndo(snap)
	h.mapMu.Unlock()
	h.broadcastEvent(MessageTypeConnectionAdded, conn)
	return conn, nil
}

// RemoveConnection deletes conn and broadcasts the change.
func (h *EditorHub) RemoveConnection(conn *typedef.Connection) error {
	label := conn.Label
	h.mapMu.Lock()
	snap, err := h.Map.Snapshot()
	if err != nil {
		h.mapMu.Unlock()
		return err
	}
	if err := h.Map.DeleteConnection(conn); err != nil {
		h.mapMu.Unlock()
		return err
	}
	h.pushUndo(snap)
	h.mapMu.Unlock()
	h.broadcastEvent(MessageTypeConnectionRemoved, map[string]string{"label": label})
	return nil
}

// pushUndo records a pre-mutation snapshot. Caller must hold mapMu for the
// mutation this snapshot precedes.
func (h *EditorHub) pushUndo(snap []byte) {
	h.undoMu.Lock()
	h.undoStack = append(h.undoStack, snap)
	if len(h.undoStack) > maxUndoDepth {
		h.undoStack = h.undoStack[len(h.undoStack)-maxUndoDepth:]
	}
	h.undoMu.Unlock()
}

// Undo reverses the most recent mutation by restoring the map to the
// snapshot taken just before it, and broadcasts the change. It returns
// ErrNothingToUndo if the undo stack is empty.
func (h *EditorHub) Undo() error {
	h.undoMu.Lock()
	if len(h.undoStack) == 0 {
		h.undoMu.Unlock()
		return ErrNothingToUndo
	}
	snap := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.undoMu.Unlock()

	h.mapMu.Lock()
	err := h.Map.RestoreSnapshot(snap)
	h.mapMu.Unlock()
	if err != nil {
		return err
	}
	h.broadcastEvent(MessageTypeUndone, nil)
	return nil
}

func (h *EditorHub) broadcastEvent(t MessageType, data any) {
	select {
	case h.broadcast <- WSMessage{Type: t, Data: data, Timestamp: time.Now()}:
	default:
		h.Logger.Log(typedef.LogWarning, fmt.Sprintf("editor broadcast channel full, dropping %s event", t))
	}
}
