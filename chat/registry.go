package chat

import (
	"sync"

	"go.uber.org/zap"

	"github.com/citypulse/event-chat-api/models"
)

// Registry tracks the live connections joined to each event room and routes
// envelopes to the right subset. Rooms come into existence on the first
// Register for their id and are pruned when the last connection leaves; the
// registry holds no persistent room records.
//
// The room table sits behind an RWMutex and each room guards its own
// connection set. The registry lock is only ever held to look the room up,
// never across a room lock or a network write, so a stalled peer in one
// room cannot back up joins, leaves or delivery anywhere else.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[int]*room
	policy AccessPolicy
}

type room struct {
	mu     sync.Mutex
	conns  map[Conn]struct{}
	pruned bool // set when the room was removed from the table
}

// NewRegistry creates an empty registry guarded by the given access policy.
// A nil policy admits everyone.
func NewRegistry(policy AccessPolicy) *Registry {
	if policy == nil {
		policy = AllowAll{}
	}
	return &Registry{
		rooms:  make(map[int]*room),
		policy: policy,
	}
}

// AccessCheck reports whether the user may join or read the room
func (r *Registry) AccessCheck(chatID, userID int) bool {
	return r.policy.Allow(chatID, userID)
}

// Register adds conn to the room's connection set, creating the room on
// first join. The caller guarantees the connection was authenticated and
// admitted, and registers it exactly once per connection lifetime.
func (r *Registry) Register(conn Conn, chatID int) {
	for {
		r.mu.Lock()
		rm, ok := r.rooms[chatID]
		if !ok {
			rm = &room{conns: make(map[Conn]struct{})}
			r.rooms[chatID] = rm
		}
		r.mu.Unlock()

		rm.mu.Lock()
		if rm.pruned {
			// lost the race against the last leave; the room is gone
			// from the table, start over
			rm.mu.Unlock()
			continue
		}
		rm.conns[conn] = struct{}{}
		rm.mu.Unlock()
		return
	}
}

// Deregister removes conn from the room's connection set and prunes the
// room once it is empty. Calling it for a connection that was never
// registered, or a second time on racing disconnect paths, is a no-op.
func (r *Registry) Deregister(conn Conn, chatID int) {
	r.mu.RLock()
	rm, ok := r.rooms[chatID]
	r.mu.RUnlock()
	if !ok {
		return
	}

	rm.mu.Lock()
	delete(rm.conns, conn)
	if len(rm.conns) > 0 {
		rm.mu.Unlock()
		return
	}
	rm.pruned = true
	rm.mu.Unlock()

	r.mu.Lock()
	if r.rooms[chatID] == rm {
		delete(r.rooms, chatID)
	}
	r.mu.Unlock()
}

// SendTo delivers an envelope to exactly one connection. A failed write is
// logged and swallowed; the peer's own disconnect detection deregisters it.
func (r *Registry) SendTo(conn Conn, envelope models.MessageEnvelope) {
	if err := conn.WriteJSON(envelope); err != nil {
		zap.S().Warnw("failed to deliver chat envelope",
			"userID", envelope.UserID,
			"error", err,
		)
	}
}

// Broadcast delivers the envelope to every connection currently in the
// room except excluding (the sender, which gets its own copy via SendTo).
// An unknown room is a no-op. A write failure on one peer is logged and
// does not abort delivery to the rest. The registry lock is released
// before the writes start, so a slow room only stalls its own members.
func (r *Registry) Broadcast(envelope models.MessageEnvelope, chatID int, excluding Conn) {
	r.mu.RLock()
	rm, ok := r.rooms[chatID]
	r.mu.RUnlock()
	if !ok {
		return
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	for conn := range rm.conns {
		if conn == excluding {
			continue
		}
		if err := conn.WriteJSON(envelope); err != nil {
			zap.S().Warnw("failed to broadcast chat envelope",
				"chatID", chatID,
				"error", err,
			)
		}
	}
}

// RoomSize returns how many connections are currently joined to the room
func (r *Registry) RoomSize(chatID int) int {
	r.mu.RLock()
	rm, ok := r.rooms[chatID]
	r.mu.RUnlock()
	if !ok {
		return 0
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.conns)
}

// Stats returns the number of active rooms and live connections
func (r *Registry) Stats() (rooms int, conns int) {
	r.mu.RLock()
	snapshot := make([]*room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		snapshot = append(snapshot, rm)
	}
	r.mu.RUnlock()

	for _, rm := range snapshot {
		rm.mu.Lock()
		if !rm.pruned {
			rooms++
			conns += len(rm.conns)
		}
		rm.mu.Unlock()
	}
	return rooms, conns
}
