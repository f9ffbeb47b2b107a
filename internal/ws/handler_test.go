package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"realtime-service/internal/auth"
	"realtime-service/internal/models"
)

type presenceRecorder struct {
	mu    sync.Mutex
	calls []presenceCall
}

type presenceCall struct {
	userID    int
	wasAuthed bool
	last      bool
}

func (p *presenceRecorder) HandleDisconnect(_ context.Context, userID int, wasAuthed, last bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, presenceCall{userID: userID, wasAuthed: wasAuthed, last: last})
}

func (p *presenceRecorder) snapshot() []presenceCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]presenceCall(nil), p.calls...)
}

func signTestToken(t *testing.T, secret []byte, userID int) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		UserID:   userID,
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(secret)
	require.NoError(t, err)
	return token
}

func startWSServer(t *testing.T, handler *Handler) (*httptest.Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", handler.Handle)
	srv := httptest.NewServer(r)
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestHandleAuthSuccess(t *testing.T) {
	secret := []byte("test-secret")
	registry := NewRegistry()
	presence := &presenceRecorder{}
	handler := NewHandler(registry, auth.NewVerifier(secret), presence, time.Minute)

	srv, url := startWSServer(t, handler)
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.WriteJSON(models.ClientFrame{Type: models.FrameAuth, Token: signTestToken(t, secret, 42)}))

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	var reply models.AuthResultEvent
	require.NoError(t, client.ReadJSON(&reply))
	require.Equal(t, "auth_success", reply.Type)

	require.Eventually(t, func() bool { return registry.ConnCount(42) == 1 }, time.Second, 10*time.Millisecond)
}

func TestHandleAuthBadTokenKeepsConnection(t *testing.T) {
	registry := NewRegistry()
	presence := &presenceRecorder{}
	handler := NewHandler(registry, auth.NewVerifier([]byte("test-secret")), presence, time.Minute)

	srv, url := startWSServer(t, handler)
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.WriteJSON(models.ClientFrame{Type: models.FrameAuth, Token: "garbage"}))

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	var reply models.AuthResultEvent
	require.NoError(t, client.ReadJSON(&reply))
	require.Equal(t, "auth_error", reply.Type)

	// the connection stays open for a retry with a fresh token
	require.NoError(t, client.WriteJSON(models.ClientFrame{Type: models.FrameAuth, Token: "garbage"}))
	require.NoError(t, client.ReadJSON(&reply))
	require.Equal(t, "auth_error", reply.Type)
}

func TestHandleClosesUnauthenticatedAfterTimeout(t *testing.T) {
	registry := NewRegistry()
	presence := &presenceRecorder{}
	handler := NewHandler(registry, auth.NewVerifier([]byte("test-secret")), presence, 50*time.Millisecond)

	srv, url := startWSServer(t, handler)
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = client.ReadMessage()
	require.Error(t, err)

	require.Eventually(t, func() bool {
		calls := presence.snapshot()
		return len(calls) == 1 && !calls[0].wasAuthed
	}, time.Second, 10*time.Millisecond)
}

func TestHandleDisconnectReportsIdentity(t *testing.T) {
	secret := []byte("test-secret")
	registry := NewRegistry()
	presence := &presenceRecorder{}
	handler := NewHandler(registry, auth.NewVerifier(secret), presence, time.Minute)

	srv, url := startWSServer(t, handler)
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.NoError(t, client.WriteJSON(models.ClientFrame{Type: models.FrameAuth, Token: signTestToken(t, secret, 42)}))
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	var reply models.AuthResultEvent
	require.NoError(t, client.ReadJSON(&reply))
	require.Equal(t, "auth_success", reply.Type)

	client.Close()

	require.Eventually(t, func() bool {
		calls := presence.snapshot()
		return len(calls) == 1 && calls[0] == presenceCall{userID: 42, wasAuthed: true, last: true}
	}, time.Second, 10*time.Millisecond)
	require.Equal(t, 0, registry.ConnCount(42))
}

func TestHandleIgnoresMalformedFrames(t *testing.T) {
	secret := []byte("test-secret")
	registry := NewRegistry()
	handler := NewHandler(registry, auth.NewVerifier(secret), &presenceRecorder{}, time.Minute)

	srv, url := startWSServer(t, handler)
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("{{not json")))

	// the connection survives and still accepts a valid auth frame
	require.NoError(t, client.WriteJSON(models.ClientFrame{Type: models.FrameAuth, Token: signTestToken(t, secret, 42)}))
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	var reply models.AuthResultEvent
	require.NoError(t, client.ReadJSON(&reply))
	require.Equal(t, "auth_success", reply.Type)
}
