package models

import (
	"encoding/json"
	"time"
)

// Notification types understood by the delivery preferences.
const (
	NotificationTypeMessage = "message"
	NotificationTypeComment = "comment"
)

// Notification is a durable, recipient-scoped record of an event the
// recipient has not yet acknowledged.
type Notification struct {
	ID         int             `db:"id" json:"id"`
	UserID     int             `db:"user_id" json:"user_id"`
	Title      string          `db:"title" json:"title"`
	Type       string          `db:"type" json:"type"`
	Payload    json.RawMessage `db:"payload" json:"payload"`
	ReadStatus bool            `db:"read_status" json:"is_read"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// NotificationPayload is the structured, type-specific part of a
// notification. Field names are part of the wire contract with the
// forum frontend: clients route on roomId/postId without a follow-up
// fetch.
type NotificationPayload struct {
	Message      string `json:"message,omitempty"`
	RoomID       int    `json:"roomId,omitempty"`
	SenderID     int    `json:"senderId,omitempty"`
	SenderName   string `json:"senderName,omitempty"`
	MessageCount int    `json:"messageCount,omitempty"`
	PostID       int    `json:"postId,omitempty"`
	CommentID    int    `json:"commentId,omitempty"`
}

// NotificationSettings holds one user's per-type delivery flags.
// Created lazily with everything enabled. BrowserNotification is a
// client-side display preference: the frontend reads it before raising
// a desktop notification, the server never gates on it and the update
// endpoint leaves it pinned on.
type NotificationSettings struct {
	UserID              int  `db:"user_id" json:"user_id"`
	BrowserNotification bool `db:"browser_notification" json:"browser_notification"`
	ChatNotification    bool `db:"chat_notification" json:"chat_notification"`
	CommentNotification bool `db:"comment_notification" json:"comment_notification"`
}

// Allows reports whether notifications of typ may be delivered. Types
// without a dedicated flag are always allowed.
func (s NotificationSettings) Allows(typ string) bool {
	switch typ {
	case NotificationTypeMessage:
		return s.ChatNotification
	case NotificationTypeComment:
		return s.CommentNotification
	default:
		return true
	}
}
