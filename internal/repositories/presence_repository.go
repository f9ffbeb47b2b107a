package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"realtime-service/internal/models"
)

// PresenceRepository persists per-user online state.
type PresenceRepository interface {
	UpsertStatus(ctx context.Context, userID int, isOnline bool) (models.PresenceRecord, error)
	GetStatus(ctx context.Context, userID int) (models.PresenceRecord, error)
}

// PresenceRepo is a sqlx implementation of PresenceRepository.
type PresenceRepo struct {
	db *sqlx.DB
}

// NewPresenceRepo constructs a PresenceRepo.
func NewPresenceRepo(db *sqlx.DB) *PresenceRepo {
	return &PresenceRepo{db: db}
}

// UpsertStatus writes the flag and refreshes last_seen. Last write wins.
func (r *PresenceRepo) UpsertStatus(ctx context.Context, userID int, isOnline bool) (models.PresenceRecord, error) {
	var rec models.PresenceRecord
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO user_status (user_id, is_online, last_seen) VALUES ($1, $2, NOW())
         ON CONFLICT (user_id) DO UPDATE SET is_online = EXCLUDED.is_online, last_seen = NOW()
         RETURNING user_id, is_online, last_seen`,
		userID, isOnline).
		Scan(&rec.UserID, &rec.IsOnline, &rec.LastSeen)
	return rec, err
}

// GetStatus returns the persisted record; a user with no row yet reads
// as offline.
func (r *PresenceRepo) GetStatus(ctx context.Context, userID int) (models.PresenceRecord, error) {
	var rec models.PresenceRecord
	err := r.db.GetContext(ctx, &rec,
		`SELECT user_id, is_online, last_seen FROM user_status WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PresenceRecord{UserID: userID}, nil
	}
	return rec, err
}
