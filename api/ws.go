package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Anas-Nayeem4922/draw-app/pkg/msgbroker"
	"github.com/Anas-Nayeem4922/draw-app/pkg/wire"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

const outboundQueueSize = 256

var errQueueFull = errors.New("outbound queue full")

// wsConn adapts one websocket to the hub's Conn. Sends enqueue into a
// buffered channel drained by a single writer goroutine, which is what keeps
// delivery FIFO per connection without blocking the publisher.
type wsConn struct {
	id   string
	conn net.Conn
	out  chan []byte
	done chan struct{}
	once sync.Once
}

func newWSConn(conn net.Conn) *wsConn {
	return &wsConn{
		id:   uuid.NewString(),
		conn: conn,
		out:  make(chan []byte, outboundQueueSize),
		done: make(chan struct{}),
	}
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) Send(data []byte) error {
	select {
	case <-c.done:
		return errors.New("connection closed")
	default:
	}
	select {
	case c.out <- data:
		return nil
	default:
		return errQueueFull
	}
}

func (c *wsConn) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// writeLoop is the only writer on the socket. It drains the outbound queue
// and pings every 30s like any long-lived connection should.
func (c *wsConn) writeLoop() {
	ticker := time.NewTicker(time.Second * 30)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.out:
			if err := wsutil.WriteServerText(c.conn, data); err != nil {
				log.Warn(err)
				c.close()
				return
			}
		case <-ticker.C:
			if err := wsutil.WriteServerMessage(c.conn, ws.OpPing, []byte("ping")); err != nil {
				log.Warn(err)
				c.close()
				return
			}
		}
	}
}

// Endpoint to establish websocket connection. Session auth already ran in
// the middleware, so everything past the upgrade trusts the connection.
func (api *API) websocket(c echo.Context) error {
	conn, _, _, err := ws.UpgradeHTTP(c.Request(), c.Response())
	if err != nil {
		log.Warn(err)
		return c.NoContent(http.StatusBadRequest)
	}

	wc := newWSConn(conn)
	go wc.writeLoop()
	api.serveConn(wc)
	return nil
}

// serveConn runs the read loop for one participant until the socket drops.
func (api *API) serveConn(wc *wsConn) {
	defer func() {
		api.hub.Leave(wc)
		wc.close()
		log.Infof("connection %s closed", wc.id)
	}()

	for {
		b, err := wsutil.ReadClientText(wc.conn)
		if err != nil {
			return
		}

		var msg wire.Message
		if err = json.Unmarshal(b, &msg); err != nil {
			log.Warn(err)
			continue
		}
		if err = msg.Validate(); err != nil {
			log.Warn(err)
			continue
		}

		switch msg.Type {
		case wire.TypeCreate:
			p, err := msg.DecodeCreate()
			if err != nil {
				log.Warn(err)
				continue
			}
			// Informational: the room was created over HTTP a moment ago.
			// Joining the creator here saves a round trip.
			api.handleJoin(wc, p.RoomID)
		case wire.TypeJoin:
			p, err := msg.DecodeJoin()
			if err != nil {
				log.Warn(err)
				continue
			}
			api.handleJoin(wc, p.RoomID)
		case wire.TypeShape:
			p, err := msg.DecodeShape()
			if err != nil {
				log.Warn(err)
				continue
			}
			api.handleShape(wc, p.RoomID, b)
		}
	}
}

func (api *API) handleJoin(wc *wsConn, roomID string) {
	if !api.storage.RoomExist(roomID) {
		api.sendAck(wc, wire.NewJoinAck(roomID, false, "no such room exists"))
		return
	}
	api.hub.Join(wc, roomID)
	api.sendAck(wc, wire.NewJoinAck(roomID, true, ""))
	log.Infof("connection %s joined room %s", wc.id, roomID)
}

// handleShape fans the event out locally and relays it to peer instances.
// The shape was already persisted by the submitting client over HTTP; the
// realtime path only distributes it.
func (api *API) handleShape(wc *wsConn, roomID string, raw []byte) {
	api.hub.Publish(roomID, raw, wc)

	env := relayEnvelope{Src: api.instanceID, Data: raw}
	b, err := json.Marshal(&env)
	if err != nil {
		log.Error(err)
		return
	}
	if err = api.msgBroker.Publish(b, api.roomsChannel+roomID); err != nil {
		log.Warn(err)
	}
}

func (api *API) sendAck(wc *wsConn, msg wire.Message) {
	b, err := json.Marshal(&msg)
	if err != nil {
		log.Error(err)
		return
	}
	if err = wc.Send(b); err != nil {
		log.Warn(err)
	}
}

// relayEnvelope wraps events on the broker so an instance can recognize and
// skip its own publishes coming back around.
type relayEnvelope struct {
	Src  string          `json:"src"`
	Data json.RawMessage `json:"data"`
}

// handleRelayed delivers events published by peer instances to local room
// members. The broker dispatches sequentially, so enqueueRelay sees events in
// publish order; the per-room queue keeps that order through the worker pool.
func (api *API) handleRelayed(msg *msgbroker.Message) {
	if len(msg.Channel) <= len(api.roomsChannel) {
		return
	}
	roomID := msg.Channel[len(api.roomsChannel):]

	var env relayEnvelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		log.Warn(err)
		return
	}
	if env.Src == api.instanceID {
		return
	}
	api.enqueueRelay(roomID, env.Data)
}

// relayQueue holds a room's pending relayed events. At most one drain task
// per room runs at a time, so members see one publisher's events in publish
// order while different rooms still drain concurrently across the pool.
type relayQueue struct {
	pending  [][]byte
	draining bool
}

func (api *API) enqueueRelay(roomID string, data []byte) {
	api.relayMu.Lock()
	q, ok := api.relay[roomID]
	if !ok {
		q = &relayQueue{}
		api.relay[roomID] = q
	}
	q.pending = append(q.pending, data)
	start := !q.draining
	q.draining = true
	api.relayMu.Unlock()

	if start {
		api.workerPool.Submit(func() {
			api.drainRelay(roomID, q)
		})
	}
}

func (api *API) drainRelay(roomID string, q *relayQueue) {
	for {
		api.relayMu.Lock()
		if len(q.pending) == 0 {
			q.draining = false
			api.relayMu.Unlock()
			return
		}
		data := q.pending[0]
		q.pending = q.pending[1:]
		api.relayMu.Unlock()

		api.hub.Publish(roomID, data, nil)
	}
}
