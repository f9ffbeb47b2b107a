package models

import "time"

// Room represents a private chat room between exactly two users.
// The participant pair is stored sorted (user1_id < user2_id) so the
// unique constraint covers the unordered pair.
type Room struct {
	ID        int       `db:"id" json:"id"`
	User1ID   int       `db:"user1_id" json:"user1_id"`
	User2ID   int       `db:"user2_id" json:"user2_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// OtherParticipant returns the room member that is not userID.
func (r Room) OtherParticipant(userID int) int {
	if r.User1ID == userID {
		return r.User2ID
	}
	return r.User1ID
}

// HasParticipant reports whether userID belongs to the room.
func (r Room) HasParticipant(userID int) bool {
	return r.User1ID == userID || r.User2ID == userID
}

// RoomSummary is the API view of a room in one user's room list.
type RoomSummary struct {
	RoomID          int        `json:"room_id"`
	OtherUserID     int        `json:"other_user_id"`
	OtherUserName   string     `json:"other_user_name"`
	OtherUserOnline bool       `json:"other_user_online"`
	OtherLastSeen   time.Time  `json:"other_user_last_seen"`
	LastMessage     string     `json:"last_message,omitempty"`
	LastMessageTime *time.Time `json:"last_message_time,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
