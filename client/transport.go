package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/Anas-Nayeem4922/draw-app/pkg/wire"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// ErrChannelUnavailable reports a send attempted with no live connection.
// Callers queue the message and retry once the transport is ready instead of
// dropping it.
var ErrChannelUnavailable = errors.New("room channel unavailable")

// Transport carries wire messages between a participant and the server.
// Tests use an in-memory implementation; WSTransport is the real one.
type Transport interface {
	Ready() bool
	Send(msg wire.Message) error
	// Receive blocks until the next message arrives or the transport fails.
	Receive() (wire.Message, error)
	Close() error
}

// WSTransport is a Transport over a websocket.
type WSTransport struct {
	url  string
	mu   sync.Mutex
	conn net.Conn
}

func NewWSTransport(url string) *WSTransport {
	return &WSTransport{url: url}
}

// Dial connects (or reconnects) to the server. The caller flushes any queued
// messages after a successful dial.
func (t *WSTransport) Dial(ctx context.Context) error {
	conn, _, _, err := ws.Dial(ctx, t.url)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrChannelUnavailable, err)
	}
	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()
	return nil
}

func (t *WSTransport) Ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

func (t *WSTransport) Send(msg wire.Message) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return ErrChannelUnavailable
	}

	b, err := json.Marshal(&msg)
	if err != nil {
		return err
	}
	if err = wsutil.WriteClientText(conn, b); err != nil {
		t.drop(conn)
		return fmt.Errorf("%w: %v", ErrChannelUnavailable, err)
	}
	return nil
}

func (t *WSTransport) Receive() (wire.Message, error) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return wire.Message{}, ErrChannelUnavailable
	}

	b, err := wsutil.ReadServerText(conn)
	if err != nil {
		t.drop(conn)
		return wire.Message{}, fmt.Errorf("%w: %v", ErrChannelUnavailable, err)
	}
	var msg wire.Message
	if err = json.Unmarshal(b, &msg); err != nil {
		return wire.Message{}, err
	}
	return msg, nil
}

// drop forgets the connection so Ready reports false until the next Dial.
func (t *WSTransport) drop(conn net.Conn) {
	t.mu.Lock()
	if t.conn == conn {
		t.conn = nil
	}
	t.mu.Unlock()
	_ = conn.Close()
}

func (t *WSTransport) Close() error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}
