package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"realtime-service/internal/auth"
	"realtime-service/internal/models"
	"realtime-service/internal/observability"
)

// PresenceNotifier receives connection teardown so presence can follow.
type PresenceNotifier interface {
	HandleDisconnect(ctx context.Context, userID int, wasAuthed, last bool)
}

// Handler owns the persistent connection endpoint. Connections arrive
// unauthenticated and identify themselves with an in-band auth frame;
// until then they receive nothing and are closed after authTimeout.
type Handler struct {
	registry    *Registry
	verifier    *auth.Verifier
	presence    PresenceNotifier
	authTimeout time.Duration
}

// NewHandler constructs a Handler.
func NewHandler(registry *Registry, verifier *auth.Verifier, presence PresenceNotifier, authTimeout time.Duration) *Handler {
	return &Handler{
		registry:    registry,
		verifier:    verifier,
		presence:    presence,
		authTimeout: authTimeout,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and runs its read loop.
func (h *Handler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("realtime-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	state := ConnState{
		ConnID:      newConnID(),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.registry.Register(conn, state)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	h.publishConnEvent(context.Background(), "ws_connect", state, "")

	// Idle unauthenticated connections are closed; an identified one
	// lives until the peer goes away.
	authTimer := time.AfterFunc(h.authTimeout, func() {
		if st, ok := h.registry.State(conn); ok && !st.Authenticated() {
			log.Printf("closing connection %s: no auth within %s", state.ConnID, h.authTimeout)
			conn.Close()
		}
	})

	go h.readLoop(conn, state, authTimer)
}

func (h *Handler) readLoop(conn *websocket.Conn, state ConnState, authTimer *time.Timer) {
	var closeReason string
	defer func() {
		authTimer.Stop()
		userID, wasAuthed, last := h.registry.Unregister(conn)
		conn.Close()

		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		h.publishConnEvent(context.Background(), "ws_disconnect", state, closeReason)

		h.presence.HandleDisconnect(context.Background(), userID, wasAuthed, last)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
			}
			return
		}

		var frame models.ClientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			// malformed frames never take the connection down
			log.Printf("conn %s: malformed frame: %v", state.ConnID, err)
			continue
		}

		switch frame.Type {
		case models.FrameAuth:
			h.handleAuth(conn, state, frame.Token, authTimer)
		case models.FrameViewingRoom:
			h.registry.SetViewingRoom(conn, frame.RoomID)
		default:
			log.Printf("conn %s: unknown frame type %q", state.ConnID, frame.Type)
		}
	}
}

// handleAuth binds the token's identity to the connection. A bad token
// leaves the connection registered and unauthenticated; the client may
// retry with a fresh token.
func (h *Handler) handleAuth(conn *websocket.Conn, state ConnState, token string, authTimer *time.Timer) {
	claims, err := h.verifier.Verify(token)
	if err != nil {
		observability.IncWSEvent("ws_auth_error")
		h.registry.SendToConn(conn, models.AuthError("authentication failed"))
		return
	}

	authTimer.Stop()
	h.registry.Authenticate(conn, claims.UserID, claims.Username)
	h.registry.SendToConn(conn, models.AuthSuccess())
	observability.IncWSEvent("ws_auth_success")
	log.Printf("conn %s authenticated as user %d", state.ConnID, claims.UserID)
}

func (h *Handler) publishConnEvent(ctx context.Context, event string, state ConnState, reason string) {
	_ = observability.PublishEvent(ctx, "ws_events.realtime", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload: map[string]interface{}{
			"ws": map[string]interface{}{
				"event":       event,
				"conn_id":     state.ConnID,
				"duration_ms": time.Since(state.ConnectedAt).Milliseconds(),
				"reason":      reason,
			},
			"identity": map[string]interface{}{
				"ip": state.IP,
			},
		},
	}, observability.BuildHeaders(state.RequestID, state.TraceID))
}
