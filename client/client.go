// Package client is the participant side of the realtime canvas: it turns
// pointer input into committed shapes, keeps the local shape list in sync
// with the room channel, and persists commits through the Store.
package client

import (
	"errors"
	"sync"

	"github.com/Anas-Nayeem4922/draw-app/canvas"
	"github.com/Anas-Nayeem4922/draw-app/model"
	"github.com/Anas-Nayeem4922/draw-app/pkg/wire"
	"github.com/labstack/gommon/log"
)

// Client synchronizes one participant's canvas with a room. All handlers run
// under one lock, so pointer events, remote events and publishes serialize
// exactly like a single-threaded event loop.
type Client struct {
	mu        sync.Mutex
	roomID    string
	tool      canvas.Tool
	gesture   canvas.Gesture
	shapes    []model.Shape
	surface   canvas.Surface
	store     Store
	transport Transport
	// queue holds outbound messages until the transport can take them. The
	// join always enters the queue before any shape, so the server learns the
	// room before it relays anything from us.
	queue []wire.Message
}

func New(roomID string, store Store, transport Transport, surface canvas.Surface) *Client {
	return &Client{
		roomID:    roomID,
		tool:      canvas.ToolLine,
		store:     store,
		transport: transport,
		surface:   surface,
	}
}

// Enter loads the room's committed shapes, renders them and announces the
// join. A nonexistent room is an error and nothing is joined. A failed shape
// fetch is not fatal: the canvas starts empty and fills from live events.
func (c *Client) Enter() error {
	if !c.store.RoomExist(c.roomID) {
		return ErrRoomNotFound
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	shapes, err := c.store.ListShapes(c.roomID)
	if err != nil {
		log.Warnf("fetching shapes for room %s: %v", c.roomID, err)
	}
	c.shapes = c.shapes[:0]
	for _, sh := range shapes {
		c.shapes = append(c.shapes, *sh)
	}
	canvas.Redraw(c.surface, c.shapes)

	c.enqueue(wire.NewJoin(c.roomID))
	return nil
}

func (c *Client) SelectTool(t canvas.Tool) {
	c.mu.Lock()
	c.tool = t
	c.mu.Unlock()
}

func (c *Client) PointerDown(x, y float64) {
	c.mu.Lock()
	c.gesture = canvas.PointerDown(c.gesture, c.tool, x, y)
	c.mu.Unlock()
}

func (c *Client) PointerMove(x, y float64) {
	c.mu.Lock()
	c.gesture = canvas.PointerMove(c.gesture, x, y, c.shapes, c.surface)
	c.mu.Unlock()
}

// PointerUp ends the gesture and, for drawing tools, commits the shape:
// persist, append locally, redraw, publish. Persistence is best-effort; a
// store failure is logged and the shape still renders and publishes, trading
// durability for responsiveness.
func (c *Client) PointerUp(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, sh, ok := canvas.PointerUp(c.gesture, x, y)
	c.gesture = g
	if !ok {
		return
	}
	sh.RoomID = c.roomID

	id, err := c.store.AppendShape(c.roomID, sh.Name, sh.Details)
	if err != nil {
		log.Warnf("persisting shape in room %s: %v", c.roomID, err)
	}
	sh.ID = id

	c.shapes = append(c.shapes, sh)
	canvas.Redraw(c.surface, c.shapes)

	c.enqueue(wire.NewShape(c.roomID, sh.Name, sh.Details))
}

// ClearShapes wipes the whole room; single-shape deletion does not exist.
func (c *Client) ClearShapes() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	count, err := c.store.ClearShapes(c.roomID)
	c.shapes = c.shapes[:0]
	canvas.Redraw(c.surface, c.shapes)
	return count, err
}

// Run pumps remote events into the client until the transport fails.
func (c *Client) Run() error {
	for {
		msg, err := c.transport.Receive()
		if err != nil {
			return err
		}
		c.HandleMessage(msg)
	}
}

// HandleMessage applies one remote event.
func (c *Client) HandleMessage(msg wire.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch msg.Type {
	case wire.TypeShape:
		p, err := msg.DecodeShape()
		if err != nil {
			log.Warnf("ignoring shape event: %v", err)
			return
		}
		if p.RoomID != c.roomID {
			return
		}
		// Append and redraw; duplicates are not detected and render twice.
		c.shapes = append(c.shapes, model.Shape{
			Name:    p.Shape.Name,
			Details: p.Shape.Details,
			RoomID:  p.RoomID,
		})
		canvas.Redraw(c.surface, c.shapes)
	case wire.TypeJoin:
		ack, err := msg.DecodeJoinAck()
		if err != nil {
			log.Warnf("ignoring join ack: %v", err)
			return
		}
		if !ack.OK {
			log.Warnf("join to room %s rejected: %s", ack.RoomID, ack.Error)
		}
	}
}

// Flush retries queued messages, typically after the transport reconnects.
func (c *Client) Flush() {
	c.mu.Lock()
	c.flush()
	c.mu.Unlock()
}

// Shapes returns a copy of the committed shape list in z-order.
func (c *Client) Shapes() []model.Shape {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Shape, len(c.shapes))
	copy(out, c.shapes)
	return out
}

// enqueue appends msg and drains as much of the queue as the transport
// accepts. Order is preserved: nothing is sent out of turn while older
// messages wait.
func (c *Client) enqueue(msg wire.Message) {
	c.queue = append(c.queue, msg)
	c.flush()
}

func (c *Client) flush() {
	for len(c.queue) > 0 {
		if !c.transport.Ready() {
			return
		}
		if err := c.transport.Send(c.queue[0]); err != nil {
			if !errors.Is(err, ErrChannelUnavailable) {
				log.Warnf("sending %s event: %v", c.queue[0].Type, err)
			}
			return
		}
		c.queue = c.queue[1:]
	}
}
