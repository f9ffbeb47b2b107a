package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"realtime-service/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository persists notification rows and their
// read-state transitions. Read rows never flip back to unread.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, userID int, title, typ string, payload json.RawMessage) (models.Notification, error)
	ListNotifications(ctx context.Context, userID, limit int) ([]models.Notification, error)
	UnreadNotifications(ctx context.Context, userID int) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID int) error
	MarkAllRead(ctx context.Context, userID int) error
	MarkRoomRead(ctx context.Context, userID, roomID int) error
	DeleteNotification(ctx context.Context, notificationID, userID int) error
	DeleteAllNotifications(ctx context.Context, userID int) error
}

// NotificationRepo is a sqlx implementation of NotificationRepository.
type NotificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepo constructs a NotificationRepo.
func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

const notificationColumns = `id, user_id, title, type, payload, read_status, created_at`

// CreateNotification inserts an unread notification row.
func (r *NotificationRepo) CreateNotification(ctx context.Context, userID int, title, typ string, payload json.RawMessage) (models.Notification, error) {
	var n models.Notification
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO notifications (user_id, title, type, payload, read_status)
         VALUES ($1, $2, $3, $4, FALSE)
         RETURNING `+notificationColumns,
		userID, title, typ, payload).
		Scan(&n.ID, &n.UserID, &n.Title, &n.Type, &n.Payload, &n.ReadStatus, &n.CreatedAt)
	return n, err
}

// ListNotifications returns the user's newest notifications.
func (r *NotificationRepo) ListNotifications(ctx context.Context, userID, limit int) ([]models.Notification, error) {
	var list []models.Notification
	err := r.db.SelectContext(ctx, &list,
		`SELECT `+notificationColumns+` FROM notifications
         WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	return list, err
}

// UnreadNotifications returns every unread row for the user. The unread
// badge is computed from payloads, not COUNT(*), so callers need the
// rows themselves.
func (r *NotificationRepo) UnreadNotifications(ctx context.Context, userID int) ([]models.Notification, error) {
	var list []models.Notification
	err := r.db.SelectContext(ctx, &list,
		`SELECT `+notificationColumns+` FROM notifications
         WHERE user_id=$1 AND read_status = FALSE`,
		userID)
	return list, err
}

// MarkRead flips one notification to read, owner-checked.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID, userID int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read_status = TRUE WHERE id=$1 AND user_id=$2`,
		notificationID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flips every unread notification for the user.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read_status = TRUE WHERE user_id=$1 AND read_status = FALSE`,
		userID)
	return err
}

// MarkRoomRead flips unread message notifications whose payload points
// at the given room. Notifications for other rooms stay unread.
func (r *NotificationRepo) MarkRoomRead(ctx context.Context, userID, roomID int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read_status = TRUE
         WHERE user_id=$1 AND type='message' AND read_status = FALSE
         AND payload->>'roomId' = $2::text`,
		userID, roomID)
	return err
}

// DeleteNotification removes one notification, owner-checked.
func (r *NotificationRepo) DeleteNotification(ctx context.Context, notificationID, userID int) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id=$1 AND user_id=$2`, notificationID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// DeleteAllNotifications clears the user's notifications, read or not.
func (r *NotificationRepo) DeleteAllNotifications(ctx context.Context, userID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_id=$1`, userID)
	return err
}
