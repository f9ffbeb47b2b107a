package models

import "time"

// Message represents a chat message. Messages are immutable once created.
type Message struct {
	ID        int       `db:"id" json:"id"`
	RoomID    int       `db:"room_id" json:"room_id"`
	SenderID  int       `db:"sender_id" json:"senderId"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// MessageView is a message joined with its sender's display name, as
// returned by the history endpoint.
type MessageView struct {
	Message
	SenderName string `db:"sender_name" json:"sender_name"`
}
