package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/jmoiron/sqlx"

	"realtime-service/internal/models"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrSelfRoom     = errors.New("cannot create room with self")
)

// RoomRepository abstracts chat room persistence.
type RoomRepository interface {
	CreateOrGetRoom(ctx context.Context, userID, otherUserID int) (models.Room, error)
	GetRoom(ctx context.Context, roomID int) (models.Room, error)
	IsParticipant(ctx context.Context, roomID, userID int) (bool, error)
	ListRooms(ctx context.Context, userID int) ([]models.RoomSummary, error)
	TouchRoom(ctx context.Context, roomID int) error
}

// RoomRepo is a sqlx implementation of RoomRepository.
type RoomRepo struct {
	db *sqlx.DB
}

// NewRoomRepo constructs a RoomRepo.
func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

const roomColumns = `id, user1_id, user2_id, created_at, updated_at`

// CreateOrGetRoom finds or creates the room for an unordered user pair.
// The pair is stored sorted and guarded by a unique constraint, so two
// users opening a room with each other at the same instant converge on
// one row: ON CONFLICT DO NOTHING followed by a re-select.
func (r *RoomRepo) CreateOrGetRoom(ctx context.Context, userID, otherUserID int) (models.Room, error) {
	if userID == otherUserID {
		return models.Room{}, ErrSelfRoom
	}
	pair := []int{userID, otherUserID}
	sort.Ints(pair)
	user1, user2 := pair[0], pair[1]

	var room models.Room
	query := `SELECT ` + roomColumns + ` FROM chat_rooms WHERE user1_id=$1 AND user2_id=$2`
	err := r.db.GetContext(ctx, &room, query, user1, user2)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, err
	}

	err = r.db.GetContext(ctx, &room,
		`INSERT INTO chat_rooms (user1_id, user2_id) VALUES ($1, $2)
         ON CONFLICT (user1_id, user2_id) DO NOTHING
         RETURNING `+roomColumns, user1, user2)
	if errors.Is(err, sql.ErrNoRows) {
		// lost the race; the other insert won
		err = r.db.GetContext(ctx, &room, query, user1, user2)
	}
	return room, err
}

// GetRoom fetches a room by id.
func (r *RoomRepo) GetRoom(ctx context.Context, roomID int) (models.Room, error) {
	var room models.Room
	err := r.db.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM chat_rooms WHERE id=$1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

// IsParticipant checks whether a user belongs to the room.
func (r *RoomRepo) IsParticipant(ctx context.Context, roomID, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM chat_rooms WHERE id=$1 AND (user1_id=$2 OR user2_id=$2))`,
		roomID, userID)
	return exists, err
}

// ListRooms returns the user's rooms with the other participant's
// presence and the latest message, newest activity first.
func (r *RoomRepo) ListRooms(ctx context.Context, userID int) ([]models.RoomSummary, error) {
	query := `SELECT cr.id,
            CASE WHEN cr.user1_id=$1 THEN cr.user2_id ELSE cr.user1_id END AS other_user_id,
            COALESCE(NULLIF(u.name, ''), u.username) AS other_user_name,
            COALESCE(us.is_online, FALSE) AS other_user_online,
            COALESCE(us.last_seen, u.created_at) AS other_last_seen,
            COALESCE(cm.content, '') AS last_message,
            cm.created_at AS last_message_time,
            cr.updated_at
        FROM chat_rooms cr
        JOIN users u ON u.id = CASE WHEN cr.user1_id=$1 THEN cr.user2_id ELSE cr.user1_id END
        LEFT JOIN user_status us ON us.user_id = u.id
        LEFT JOIN LATERAL (
            SELECT content, created_at FROM chat_messages
            WHERE room_id = cr.id ORDER BY created_at DESC LIMIT 1
        ) cm ON TRUE
        WHERE cr.user1_id=$1 OR cr.user2_id=$1
        ORDER BY cr.updated_at DESC`

	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.RoomSummary
	for rows.Next() {
		var s models.RoomSummary
		if err := rows.Scan(&s.RoomID, &s.OtherUserID, &s.OtherUserName, &s.OtherUserOnline,
			&s.OtherLastSeen, &s.LastMessage, &s.LastMessageTime, &s.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// TouchRoom bumps updated_at, which drives room list ordering.
func (r *RoomRepo) TouchRoom(ctx context.Context, roomID int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE chat_rooms SET updated_at = NOW() WHERE id=$1`, roomID)
	return err
}
