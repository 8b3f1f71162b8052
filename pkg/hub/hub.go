// Package hub relays events between the connections joined to a room.
//
// The hub trusts its callers: authentication happens before a connection is
// handed to Join, not here.
package hub

import (
	"sync"

	"github.com/labstack/gommon/log"
)

// Conn is one participant's live channel. Send must be non-blocking from the
// hub's point of view and must preserve the order of successive calls; the
// websocket implementation queues into a buffered channel drained by a single
// writer.
type Conn interface {
	ID() string
	Send(data []byte) error
}

type room struct {
	mu      sync.Mutex
	members map[string]Conn
}

// Hub maps room IDs to member sets. The hub-level lock only guards the two
// indexes; each room has its own lock, so publishes to unrelated rooms never
// contend.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]*room
	joined map[string]string // conn ID -> room ID
}

func New() *Hub {
	return &Hub{
		rooms:  make(map[string]*room),
		joined: make(map[string]string),
	}
}

// Join adds c to roomID's member set. A connection belongs to at most one
// room: joining a new room first removes it from the previous one, so stale
// memberships never receive publishes. Joining the current room again is a
// no-op.
// Lock order is hub then room, everywhere. Join and Leave keep the hub lock
// across the member-map mutations so the joined index and the member sets can
// never disagree, even when a join and a disconnect race on one connection.
func (h *Hub) Join(c Conn, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	prev, wasJoined := h.joined[c.ID()]
	if wasJoined && prev == roomID {
		return
	}
	if wasJoined {
		if old := h.rooms[prev]; old != nil {
			old.mu.Lock()
			delete(old.members, c.ID())
			old.mu.Unlock()
		}
	}
	r, ok := h.rooms[roomID]
	if !ok {
		r = &room{members: make(map[string]Conn)}
		h.rooms[roomID] = r
	}
	h.joined[c.ID()] = roomID
	r.mu.Lock()
	r.members[c.ID()] = c
	r.mu.Unlock()
}

// Leave removes c from whatever room it is in. No-op for a connection that
// never joined.
func (h *Hub) Leave(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	roomID, wasJoined := h.joined[c.ID()]
	if !wasJoined {
		return
	}
	delete(h.joined, c.ID())
	if r := h.rooms[roomID]; r != nil {
		r.mu.Lock()
		delete(r.members, c.ID())
		r.mu.Unlock()
	}
}

// Publish delivers data to every member of roomID except origin. The room
// lock is held for the whole fan-out, so membership changes and publishes to
// one room serialize, which is what makes per-recipient delivery FIFO. A
// failed send is logged and skipped; the remaining members still get the
// event. origin may be nil for events relayed from another server instance.
func (h *Hub) Publish(roomID string, data []byte, origin Conn) {
	h.mu.RLock()
	r := h.rooms[roomID]
	h.mu.RUnlock()
	if r == nil {
		return
	}

	r.mu.Lock()
	for id, member := range r.members {
		if origin != nil && id == origin.ID() {
			continue
		}
		if err := member.Send(data); err != nil {
			log.Warnf("dropping event for connection %s in room %s: %v", id, roomID, err)
		}
	}
	r.mu.Unlock()
}

// Members reports the current member IDs of a room, mainly for inspection.
func (h *Hub) Members(roomID string) []string {
	h.mu.RLock()
	r := h.rooms[roomID]
	h.mu.RUnlock()
	if r == nil {
		return nil
	}

	r.mu.Lock()
	ids := make([]string, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	return ids
}

// Room reports which room a connection is currently joined to.
func (h *Hub) Room(c Conn) (string, bool) {
	h.mu.RLock()
	roomID, ok := h.joined[c.ID()]
	h.mu.RUnlock()
	return roomID, ok
}
