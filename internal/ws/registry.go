package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Registry maps authenticated identities to their live connections. It
// is the only shared mutable state between connection goroutines and
// REST handlers; every mutation happens under one lock. An identity may
// own several connections (multiple tabs or devices).
type Registry struct {
	mu     sync.RWMutex
	conns  map[*websocket.Conn]*connEntry
	byUser map[int]map[*websocket.Conn]struct{}
}

type connEntry struct {
	state ConnState
	// gorilla/websocket allows one concurrent writer per connection
	writeMu sync.Mutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[*websocket.Conn]*connEntry),
		byUser: make(map[int]map[*websocket.Conn]struct{}),
	}
}

// Register adds a connection with no identity bound yet.
func (r *Registry) Register(conn *websocket.Conn, state ConnState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state.UserID = 0
	r.conns[conn] = &connEntry{state: state}
}

// Authenticate binds an identity to a registered connection and returns
// how many connections the identity now owns.
func (r *Registry) Authenticate(conn *websocket.Conn, userID int, username string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.conns[conn]
	if !ok {
		return 0
	}
	entry.state.UserID = userID
	entry.state.Username = username
	if _, ok := r.byUser[userID]; !ok {
		r.byUser[userID] = make(map[*websocket.Conn]struct{})
	}
	r.byUser[userID][conn] = struct{}{}
	return len(r.byUser[userID])
}

// SetViewingRoom records which room the client on this connection has
// open; nil clears it.
func (r *Registry) SetViewingRoom(conn *websocket.Conn, roomID *int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.conns[conn]; ok {
		entry.state.ViewingRoomID = roomID
	}
}

// IsViewingRoom reports whether any of the user's connections currently
// has the given room open.
func (r *Registry) IsViewingRoom(userID, roomID int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for conn := range r.byUser[userID] {
		entry, ok := r.conns[conn]
		if !ok {
			continue
		}
		if entry.state.ViewingRoomID != nil && *entry.state.ViewingRoomID == roomID {
			return true
		}
	}
	return false
}

// Unregister removes a connection. It reports the identity that was
// bound, whether the handshake had completed, and whether this was the
// identity's last live connection.
func (r *Registry) Unregister(conn *websocket.Conn) (userID int, wasAuthed, last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.conns[conn]
	if !ok {
		return 0, false, false
	}
	delete(r.conns, conn)

	if !entry.state.Authenticated() {
		return 0, false, false
	}
	userID = entry.state.UserID
	if conns, ok := r.byUser[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(r.byUser, userID)
			return userID, true, true
		}
	}
	return userID, true, false
}

// State returns a copy of the connection's state.
func (r *Registry) State(conn *websocket.Conn) (ConnState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.conns[conn]
	if !ok {
		return ConnState{}, false
	}
	return entry.state, true
}

// ConnCount returns the number of live connections bound to the user.
func (r *Registry) ConnCount(userID int) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID])
}

// SendToUser delivers an event to every live connection bound to the
// identity. Connections that fail the write are closed, which drives
// their read loops through the normal disconnect teardown.
func (r *Registry) SendToUser(userID int, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("marshal event: %v", err)
		return
	}

	r.mu.RLock()
	targets := make([]*websocket.Conn, 0, len(r.byUser[userID]))
	for conn := range r.byUser[userID] {
		targets = append(targets, conn)
	}
	r.mu.RUnlock()

	for _, conn := range targets {
		r.writeConn(conn, payload)
	}
}

// SendToConn delivers an event on one connection, authenticated or not.
// Used for handshake acknowledgments.
func (r *Registry) SendToConn(conn *websocket.Conn, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("marshal event: %v", err)
		return
	}
	r.writeConn(conn, payload)
}

// Broadcast delivers an event to every authenticated connection,
// optionally excluding one.
func (r *Registry) Broadcast(event interface{}, excluding *websocket.Conn) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("marshal event: %v", err)
		return
	}

	r.mu.RLock()
	targets := make([]*websocket.Conn, 0, len(r.conns))
	for conn, entry := range r.conns {
		if conn == excluding || !entry.state.Authenticated() {
			continue
		}
		targets = append(targets, conn)
	}
	r.mu.RUnlock()

	for _, conn := range targets {
		r.writeConn(conn, payload)
	}
}

func (r *Registry) writeConn(conn *websocket.Conn, payload []byte) {
	r.mu.RLock()
	entry, ok := r.conns[conn]
	r.mu.RUnlock()
	if !ok {
		return
	}

	entry.writeMu.Lock()
	err := conn.WriteMessage(websocket.TextMessage, payload)
	entry.writeMu.Unlock()
	if err != nil {
		// Closing the socket makes the connection's read loop exit, and
		// its teardown runs Unregister. Unregistering here instead would
		// swallow the (userID, wasAuthed, last) result the read loop
		// hands to presence.
		log.Printf("websocket write error: %v", err)
		conn.Close()
	}
}
