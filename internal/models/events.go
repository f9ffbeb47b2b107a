package models

// Wire contract for the persistent connection. Field names are fixed:
// the forum frontend switches on "type" and reads the fields below
// verbatim.

// ClientFrame is an inbound control frame. Exactly one of the optional
// fields is meaningful for a given Type.
type ClientFrame struct {
	Type   string `json:"type"`
	Token  string `json:"token,omitempty"`
	RoomID *int   `json:"roomId"`
}

// Inbound frame types.
const (
	FrameAuth        = "auth"
	FrameViewingRoom = "viewing_room"
)

// AuthResultEvent acknowledges an auth frame on the same connection.
type AuthResultEvent struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

func AuthSuccess() AuthResultEvent {
	return AuthResultEvent{Type: "auth_success"}
}

func AuthError(message string) AuthResultEvent {
	return AuthResultEvent{Type: "auth_error", Message: message}
}

// PresenceEvent is broadcast to every authenticated connection when a
// user's online state changes. Clients filter by relevance themselves.
type PresenceEvent struct {
	Type     string `json:"type"`
	UserID   int    `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}

func NewPresenceEvent(userID int, isOnline bool) PresenceEvent {
	return PresenceEvent{Type: "presence_changed", UserID: userID, IsOnline: isOnline}
}

// NotificationBody is the pushed rendering of a notification: the title
// plus the flattened payload, so clients render and route without a
// follow-up fetch.
type NotificationBody struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	NotificationPayload
}

// NotificationEvent pushes a freshly created notification to the
// recipient's live connections.
type NotificationEvent struct {
	Type         string           `json:"type"`
	Notification NotificationBody `json:"notification"`
}

func NewNotificationEvent(title, typ string, payload NotificationPayload) NotificationEvent {
	return NotificationEvent{
		Type:         "notification",
		Notification: NotificationBody{Title: title, Type: typ, NotificationPayload: payload},
	}
}

// ChatMessageEvent pushes a persisted chat message to a participant's
// live connections. It may race the NotificationEvent for the same
// message; both carry the message id so clients dedupe before render.
type ChatMessageEvent struct {
	Type           string  `json:"type"`
	ConversationID int     `json:"conversationId"`
	Message        Message `json:"message"`
}

func NewChatMessageEvent(roomID int, msg Message) ChatMessageEvent {
	return ChatMessageEvent{Type: "chat_message", ConversationID: roomID, Message: msg}
}
