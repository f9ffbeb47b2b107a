package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

// dialPair builds a real connected websocket and returns its
// server-side half.
func dialPair(t *testing.T) (*websocket.Conn, func()) {
	t.Helper()
	serverConns := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverConns <- conn
	}))

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}
	server := <-serverConns

	return server, func() {
		client.Close()
		server.Close()
		srv.Close()
	}
}

func TestRegistryAuthenticateAndUnregister(t *testing.T) {
	registry := NewRegistry()
	conn := &websocket.Conn{}

	registry.Register(conn, ConnState{ConnID: "a"})
	if registry.ConnCount(42) != 0 {
		t.Fatalf("expected no connections before the auth frame")
	}

	if n := registry.Authenticate(conn, 42, "alice"); n != 1 {
		t.Fatalf("expected 1 connection after auth, got %d", n)
	}

	userID, wasAuthed, last := registry.Unregister(conn)
	if userID != 42 || !wasAuthed || !last {
		t.Fatalf("expected (42, true, true), got (%d, %v, %v)", userID, wasAuthed, last)
	}
	if registry.ConnCount(42) != 0 {
		t.Fatalf("expected connection to be removed")
	}
}

func TestRegistryUnregisterUnauthenticated(t *testing.T) {
	registry := NewRegistry()
	conn := &websocket.Conn{}

	registry.Register(conn, ConnState{ConnID: "a"})
	userID, wasAuthed, last := registry.Unregister(conn)
	if userID != 0 || wasAuthed || last {
		t.Fatalf("expected (0, false, false), got (%d, %v, %v)", userID, wasAuthed, last)
	}
}

func TestRegistryLastConnectionOnly(t *testing.T) {
	registry := NewRegistry()
	first := &websocket.Conn{}
	second := &websocket.Conn{}

	registry.Register(first, ConnState{ConnID: "a"})
	registry.Register(second, ConnState{ConnID: "b"})
	registry.Authenticate(first, 7, "bob")
	if n := registry.Authenticate(second, 7, "bob"); n != 2 {
		t.Fatalf("expected 2 connections, got %d", n)
	}

	if _, wasAuthed, last := registry.Unregister(first); !wasAuthed || last {
		t.Fatalf("expected intermediate disconnect not to be the last")
	}
	if _, wasAuthed, last := registry.Unregister(second); !wasAuthed || !last {
		t.Fatalf("expected final disconnect to be the last")
	}
}

func TestRegistryViewingRoom(t *testing.T) {
	registry := NewRegistry()
	conn := &websocket.Conn{}

	registry.Register(conn, ConnState{ConnID: "a"})
	registry.Authenticate(conn, 9, "carol")

	if registry.IsViewingRoom(9, 3) {
		t.Fatalf("expected no room to be open yet")
	}

	roomID := 3
	registry.SetViewingRoom(conn, &roomID)
	if !registry.IsViewingRoom(9, 3) {
		t.Fatalf("expected room 3 to be open")
	}
	if registry.IsViewingRoom(9, 4) {
		t.Fatalf("expected room 4 not to be open")
	}

	registry.SetViewingRoom(conn, nil)
	if registry.IsViewingRoom(9, 3) {
		t.Fatalf("expected viewing state to be cleared")
	}
}

func TestRegistryWriteErrorPreservesTeardownSignal(t *testing.T) {
	registry := NewRegistry()
	server, cleanup := dialPair(t)
	defer cleanup()

	registry.Register(server, ConnState{ConnID: "a"})
	registry.Authenticate(server, 42, "alice")

	// dead socket: the send hits a write error and closes the conn,
	// but must not consume the registration
	server.Close()
	registry.SendToUser(42, struct {
		Type string `json:"type"`
	}{Type: "ping"})

	userID, wasAuthed, last := registry.Unregister(server)
	if userID != 42 || !wasAuthed || !last {
		t.Fatalf("expected (42, true, true) after write-error prune, got (%d, %v, %v)", userID, wasAuthed, last)
	}
}

func TestRegistryRegisterDropsClaimedIdentity(t *testing.T) {
	registry := NewRegistry()
	conn := &websocket.Conn{}

	registry.Register(conn, ConnState{ConnID: "a", UserID: 99})
	state, ok := registry.State(conn)
	if !ok {
		t.Fatalf("expected connection to be registered")
	}
	if state.Authenticated() {
		t.Fatalf("expected connection to start unauthenticated")
	}
}
