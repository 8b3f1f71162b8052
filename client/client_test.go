package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Anas-Nayeem4922/draw-app/canvas"
	"github.com/Anas-Nayeem4922/draw-app/model"
	"github.com/Anas-Nayeem4922/draw-app/pkg/hub"
	"github.com/Anas-Nayeem4922/draw-app/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a canvas.Surface remembering every primitive drawn on it.
type recorder struct {
	ops []op
}

type op struct {
	kind string
	args []float64
}

func (r *recorder) Clear() { r.ops = append(r.ops, op{kind: "clear"}) }

func (r *recorder) Line(x1, y1, x2, y2 float64) {
	r.ops = append(r.ops, op{kind: "line", args: []float64{x1, y1, x2, y2}})
}

func (r *recorder) Rect(x, y, w, h float64) {
	r.ops = append(r.ops, op{kind: "rect", args: []float64{x, y, w, h}})
}

func (r *recorder) Circle(x, y, rad float64) {
	r.ops = append(r.ops, op{kind: "circle", args: []float64{x, y, rad}})
}

// memStore is an in-memory Store.
type memStore struct {
	mu         sync.Mutex
	rooms      map[string]bool
	shapes     map[string][]*model.Shape
	appends    int
	failAppend bool
}

func newMemStore(rooms ...string) *memStore {
	s := &memStore{
		rooms:  make(map[string]bool),
		shapes: make(map[string][]*model.Shape),
	}
	for _, r := range rooms {
		s.rooms[r] = true
	}
	return s
}

func (s *memStore) CreateRoom(_, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[name] = true
	return name, nil
}

func (s *memStore) RoomExist(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[roomID]
}

func (s *memStore) ListShapes(roomID string) ([]*model.Shape, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*model.Shape(nil), s.shapes[roomID]...), nil
}

func (s *memStore) AppendShape(roomID, name, details string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appends++
	if s.failAppend {
		return "", errors.New("store down")
	}
	sh := &model.Shape{ID: fmt.Sprintf("shape-%d", s.appends), Name: name, Details: details, RoomID: roomID}
	s.shapes[roomID] = append(s.shapes[roomID], sh)
	return sh.ID, nil
}

func (s *memStore) ClearShapes(roomID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.shapes[roomID]))
	delete(s.shapes, roomID)
	return n, nil
}

// hubConn is the hub-facing end of a memTransport.
type hubConn struct {
	id    string
	inbox chan []byte
}

func (c *hubConn) ID() string { return c.id }

func (c *hubConn) Send(b []byte) error {
	select {
	case c.inbox <- b:
		return nil
	default:
		return errors.New("inbox full")
	}
}

// memTransport routes wire messages straight into a hub, standing in for the
// websocket and the server read loop.
type memTransport struct {
	h    *hub.Hub
	conn *hubConn
	mu   sync.Mutex
	up   bool
	sent []wire.Message
}

func newMemTransport(h *hub.Hub, id string, up bool) *memTransport {
	return &memTransport{
		h:    h,
		conn: &hubConn{id: id, inbox: make(chan []byte, 64)},
		up:   up,
	}
}

func (t *memTransport) setReady(up bool) {
	t.mu.Lock()
	t.up = up
	t.mu.Unlock()
}

func (t *memTransport) Ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.up
}

func (t *memTransport) Send(msg wire.Message) error {
	t.mu.Lock()
	if !t.up {
		t.mu.Unlock()
		return ErrChannelUnavailable
	}
	t.sent = append(t.sent, msg)
	t.mu.Unlock()

	switch msg.Type {
	case wire.TypeJoin:
		p, err := msg.DecodeJoin()
		if err != nil {
			return err
		}
		t.h.Join(t.conn, p.RoomID)
	case wire.TypeShape:
		p, err := msg.DecodeShape()
		if err != nil {
			return err
		}
		b, err := json.Marshal(&msg)
		if err != nil {
			return err
		}
		t.h.Publish(p.RoomID, b, t.conn)
	}
	return nil
}

func (t *memTransport) Receive() (wire.Message, error) {
	b, ok := <-t.conn.inbox
	if !ok {
		return wire.Message{}, ErrChannelUnavailable
	}
	var msg wire.Message
	if err := json.Unmarshal(b, &msg); err != nil {
		return wire.Message{}, err
	}
	return msg, nil
}

func (t *memTransport) Close() error {
	t.h.Leave(t.conn)
	close(t.conn.inbox)
	return nil
}

func (t *memTransport) sentTypes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.sent))
	for i, m := range t.sent {
		out[i] = m.Type
	}
	return out
}

// Two participants in room "abc": one draws a line, the other receives the
// event and renders it without having drawn anything locally.
func TestShapeReachesOtherParticipant(t *testing.T) {
	h := hub.New()
	store := newMemStore("abc")

	ta := newMemTransport(h, "a", true)
	surfA := &recorder{}
	a := New("abc", store, ta, surfA)
	require.NoError(t, a.Enter())

	tb := newMemTransport(h, "b", true)
	surfB := &recorder{}
	b := New("abc", store, tb, surfB)
	require.NoError(t, b.Enter())

	a.SelectTool(canvas.ToolLine)
	a.PointerDown(0, 0)
	a.PointerMove(5, 5)
	a.PointerUp(10, 10)

	msg, err := tb.Receive()
	require.NoError(t, err)
	b.HandleMessage(msg)

	shapes := b.Shapes()
	require.Len(t, shapes, 1)
	assert.Equal(t, canvas.ShapeLine, shapes[0].Name)

	g, err := canvas.Decode(shapes[0].Name, shapes[0].Details)
	require.NoError(t, err)
	assert.Equal(t, canvas.Line{StartX: 0, StartY: 0, EndX: 10, EndY: 10}, g)

	// B rendered the line without a gesture of its own.
	last := surfB.ops[len(surfB.ops)-1]
	assert.Equal(t, op{kind: "line", args: []float64{0, 0, 10, 10}}, last)

	// A persisted it exactly once; B persisted nothing.
	assert.Equal(t, 1, store.appends)
}

func TestEnterUnknownRoom(t *testing.T) {
	h := hub.New()
	ta := newMemTransport(h, "a", true)
	a := New("nope", newMemStore(), ta, &recorder{})

	assert.ErrorIs(t, a.Enter(), ErrRoomNotFound)
	assert.Empty(t, ta.sentTypes(), "no join may be sent for a nonexistent room")
}

func TestEnterLoadsExistingShapes(t *testing.T) {
	h := hub.New()
	store := newMemStore("abc")
	details, err := canvas.Encode(canvas.ShapeCircle, canvas.Circle{StartX: 1, StartY: 1, Radius: 2})
	require.NoError(t, err)
	_, err = store.AppendShape("abc", canvas.ShapeCircle, details)
	require.NoError(t, err)

	surf := &recorder{}
	a := New("abc", store, newMemTransport(h, "a", true), surf)
	require.NoError(t, a.Enter())

	require.Len(t, a.Shapes(), 1)
	assert.Equal(t, op{kind: "circle", args: []float64{1, 1, 2}}, surf.ops[len(surf.ops)-1])
}

// Messages produced before the transport is ready queue up and flush in
// order, join first.
func TestJoinQueuedUntilReady(t *testing.T) {
	h := hub.New()
	store := newMemStore("abc")
	ta := newMemTransport(h, "a", false)
	a := New("abc", store, ta, &recorder{})
	require.NoError(t, a.Enter())

	a.SelectTool(canvas.ToolLine)
	a.PointerDown(0, 0)
	a.PointerUp(1, 1)

	assert.Empty(t, ta.sentTypes())
	assert.Empty(t, h.Members("abc"))

	ta.setReady(true)
	a.Flush()

	assert.Equal(t, []string{wire.TypeJoin, wire.TypeShape}, ta.sentTypes())
	assert.Equal(t, []string{"a"}, h.Members("abc"))
}

// A store failure must not block the realtime path: the shape still renders
// locally and still publishes.
func TestPersistenceFailureDoesNotBlockSync(t *testing.T) {
	h := hub.New()
	store := newMemStore("abc")
	store.failAppend = true

	ta := newMemTransport(h, "a", true)
	a := New("abc", store, ta, &recorder{})
	require.NoError(t, a.Enter())

	tb := newMemTransport(h, "b", true)
	b := New("abc", store, tb, &recorder{})
	require.NoError(t, b.Enter())

	a.SelectTool(canvas.ToolArrow)
	a.PointerDown(0, 0)
	a.PointerUp(9, 9)

	require.Len(t, a.Shapes(), 1)

	msg, err := tb.Receive()
	require.NoError(t, err)
	b.HandleMessage(msg)
	assert.Len(t, b.Shapes(), 1)
}

// Duplicate delivery is not special-cased: the shape renders twice.
func TestNoDeduplication(t *testing.T) {
	h := hub.New()
	a := New("abc", newMemStore("abc"), newMemTransport(h, "a", true), &recorder{})
	require.NoError(t, a.Enter())

	msg := wire.NewShape("abc", canvas.ShapeLine, `{"startX":0,"startY":0,"endX":1,"endY":1}`)
	a.HandleMessage(msg)
	a.HandleMessage(msg)

	assert.Len(t, a.Shapes(), 2)
}

func TestShapeForOtherRoomIgnored(t *testing.T) {
	h := hub.New()
	a := New("abc", newMemStore("abc"), newMemTransport(h, "a", true), &recorder{})
	require.NoError(t, a.Enter())

	a.HandleMessage(wire.NewShape("other", canvas.ShapeLine, `{"startX":0,"startY":0,"endX":1,"endY":1}`))
	assert.Empty(t, a.Shapes())
}

func TestClearShapes(t *testing.T) {
	h := hub.New()
	store := newMemStore("abc")
	surf := &recorder{}
	a := New("abc", store, newMemTransport(h, "a", true), surf)
	require.NoError(t, a.Enter())

	a.SelectTool(canvas.ToolRect)
	a.PointerDown(0, 0)
	a.PointerUp(4, 4)
	require.Len(t, a.Shapes(), 1)

	count, err := a.ClearShapes()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Empty(t, a.Shapes())
	assert.Equal(t, "clear", surf.ops[len(surf.ops)-1].kind)
}
