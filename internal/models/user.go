package models

import "time"

// User is a read-only projection of the forum's users table. Account
// management belongs to the forum CRUD service; this service only needs
// identities and display names.
type User struct {
	ID           int       `db:"id" json:"id"`
	Username     string    `db:"username" json:"user_id"`
	Name         string    `db:"name" json:"name"`
	ProfileImage *string   `db:"profile_image" json:"profile_image,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// DisplayName prefers the real name over the login name, matching how
// the forum renders users elsewhere.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// UserSearchResult is a search hit with live presence attached.
type UserSearchResult struct {
	User
	IsOnline bool      `db:"is_online" json:"is_online"`
	LastSeen time.Time `db:"last_seen" json:"last_seen"`
}
