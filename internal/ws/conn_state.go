package ws

import "time"

// ConnState is the per-connection state held by the registry. UserID is
// zero until the connection completes the auth handshake. ViewingRoomID
// tracks which room the client has open; it feeds suppression decisions
// only, never authorization.
type ConnState struct {
	ConnID        string
	UserID        int
	Username      string
	ViewingRoomID *int
	IP            string
	RequestID     string
	TraceID       string
	ConnectedAt   time.Time
}

// Authenticated reports whether the auth handshake completed.
func (s ConnState) Authenticated() bool {
	return s.UserID != 0
}
