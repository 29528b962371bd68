package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitcore/typedef"
	"transitcore/worldmap"
)

func newTestHub(t *testing.T) *EditorHub {
	t.Helper()
	m := worldmap.New(typedef.Rect{MinX: -100, MaxX: 100, MinY: -100, MaxY: 100})
	h := NewEditorHub(m, typedef.NopLogger{})
	go h.Run()
	return h
}

// registerObserver registers a bare client (no real websocket conn) and
// drains its ack so subsequent recvs see only mutation broadcasts.
func registerObserver(t *testing.T, h *EditorHub) *wsClient {
	t.Helper()
	c := &wsClient{id: "observer", send: make(chan WSMessage, 16)}
	h.register <- c
	recvMessage(t, c)
	return c
}

func recvMessage(t *testing.T, c *wsClient) WSMessage {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for hub broadcast")
		return WSMessage{}
	}
}

func TestEditorHub_AddLocation_Broadcasts(t *testing.T) {
	t.Parallel()
	h := newTestHub(t)
	observer := registerObserver(t, h)

	loc, err := h.AddLocation("a", "A", typedef.Position{X: 1, Y: 1}, "")
	require.NoError(t, err)
	require.NotNil(t, loc)

	msg := recvMessage(t, observer)
	assert.Equal(t, MessageTypeLocationAdded, msg.Type)
}

func TestEditorHub_MoveLocation_Broadcasts(t *testing.T) {
	t.Parallel()
	h := newTestHub(t)
	loc, err := h.AddLocation("a", "A", typedef.Position{X: 0, Y: 0}, "")
	require.NoError(t, err)

	observer := registerObserver(t, h)

	require.NoError(t, h.MoveLocation(loc, "a2", typedef.Position{X: 5, Y: 5}, "A2", ""))
	msg := recvMessage(t, observer)
	assert.Equal(t, MessageTypeLocationMoved, msg.Type)

	found, ok := h.Map.LocationByID("a2")
	require.True(t, ok)
	assert.Equal(t, typedef.Position{X: 5, Y: 5}, found.Pos)
}

func TestEditorHub_RemoveLocation_Broadcasts(t *testing.T) {
	t.Parallel()
	h := newTestHub(t)
	loc, err := h.AddLocation("a", "A", typedef.Position{X: 0, Y: 0}, "")
	require.NoError(t, err)

	observer := registerObserver(t, h)

	require.NoError(t, h.RemoveLocation(loc))
	msg := recvMessage(t, observer)
	assert.Equal(t, MessageTypeLocationRemoved, msg.Type)

	_, ok := h.Map.LocationByID("a")
	assert.False(t, ok)
}

func TestEditorHub_AddAndRemoveConnection_Broadcasts(t *testing.T) {
	t.Parallel()
	h := newTestHub(t)
	_, err := h.AddLocation("a", "A", typedef.Position{X: 0, Y: 0}, "")
	require.NoError(t, err)
	_, err = h.AddLocation("b", "B", typedef.Position{X: 1, Y: 0}, "")
	require.NoError(t, err)

	observer := registerObserver(t, h)

	conn, err := h.AddConnection(5, true, "L1", "", "a", "b")
	require.NoError(t, err)
	msg := recvMessage(t, observer)
	assert.Equal(t, MessageTypeConnectionAdded, msg.Type)

	require.NoError(t, h.RemoveConnection(conn))
	msg = recvMessage(t, observer)
	assert.Equal(t, MessageTypeConnectionRemoved, msg.Type)

	assert.Empty(t, h.Map.Connections())
}

func TestEditorHub_MutationError_DoesNotBroadcast(t *testing.T) {
	t.Parallel()
	h := newTestHub(t)
	_, err := h.AddLocation("a", "A", typedef.Position{X: 0, Y: 0}, "")
	require.NoError(t, err)

	observer := registerObserver(t, h)

	_, err = h.AddLocation("a", "A-dup", typedef.Position{X: 9, Y: 9}, "")
	require.Error(t, err)

	select {
	case msg := <-observer.send:
		t.Fatalf("expected no broadcast after a failed mutation, got %v", msg.Type)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEditorHub_Undo_ReversesLastMutation(t *testing.T) {
	t.Parallel()
	h := newTestHub(t)

	_, err := h.AddLocation("a", "A", typedef.Position{X: 0, Y: 0}, "")
	require.NoError(t, err)
	_, err = h.AddLocation("b", "B", typedef.Position{X: 1, Y: 0}, "")
	require.NoError(t, err)

	observer := registerObserver(t, h)

	require.NoError(t, h.Undo())
	msg := recvMessage(t, observer)
	assert.Equal(t, MessageTypeUndone, msg.Type)

	_, ok := h.Map.LocationByID("b")
	assert.False(t, ok, "undo must remove the location added by the last mutation")
	_, ok = h.Map.LocationByID("a")
	assert.True(t, ok, "undo must leave earlier mutations intact")
}

func TestEditorHub_Undo_MultipleSteps(t *testing.T) {
	t.Parallel()
	h := newTestHub(t)

	loc, err := h.AddLocation("a", "A", typedef.Position{X: 0, Y: 0}, "")
	require.NoError(t, err)
	require.NoError(t, h.MoveLocation(loc, "a", typedef.Position{X: 5, Y: 5}, "A", ""))

	require.NoError(t, h.Undo())
	found, ok := h.Map.LocationByID("a")
	require.True(t, ok)
	assert.Equal(t, typedef.Position{X: 0, Y: 0}, found.Pos, "first undo reverses the move")

	require.NoError(t, h.Undo())
	_, ok = h.Map.LocationByID("a")
	assert.False(t, ok, "second undo reverses the add")
}

func TestEditorHub_Undo_EmptyStackErrors(t *testing.T) {
	t.Parallel()
	h := newTestHub(t)

	err := h.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)
}
