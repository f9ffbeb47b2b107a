package models

import "time"

// PresenceRecord is the durable online/offline record for one user.
// Upserted last-write-wins; no history is kept.
type PresenceRecord struct {
	UserID   int       `db:"user_id" json:"user_id"`
	IsOnline bool      `db:"is_online" json:"is_online"`
	LastSeen time.Time `db:"last_seen" json:"last_seen"`
}
