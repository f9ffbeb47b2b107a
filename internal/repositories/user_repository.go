package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"realtime-service/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository reads identities from the forum's users table. The
// table is owned by the forum CRUD service; this side never writes it.
type UserRepository interface {
	GetUser(ctx context.Context, userID int) (models.User, error)
	SearchUsers(ctx context.Context, selfID int, query string) ([]models.UserSearchResult, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetUser fetches a user by id.
func (r *UserRepo) GetUser(ctx context.Context, userID int) (models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u,
		`SELECT id, username, name, profile_image, created_at FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return u, err
}

// SearchUsers matches name or login against query, excluding the
// caller, online users first.
func (r *UserRepo) SearchUsers(ctx context.Context, selfID int, query string) ([]models.UserSearchResult, error) {
	pattern := "%" + query + "%"
	var users []models.UserSearchResult
	err := r.db.SelectContext(ctx, &users,
		`SELECT u.id, u.username, u.name, u.profile_image, u.created_at,
            COALESCE(us.is_online, FALSE) AS is_online,
            COALESCE(us.last_seen, u.created_at) AS last_seen
         FROM users u
         LEFT JOIN user_status us ON us.user_id = u.id
         WHERE u.id != $1 AND (u.name ILIKE $2 OR u.username ILIKE $2)
         ORDER BY COALESCE(us.is_online, FALSE) DESC, u.name ASC
         LIMIT 20`,
		selfID, pattern)
	return users, err
}
