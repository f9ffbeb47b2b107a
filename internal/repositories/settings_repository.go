package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"realtime-service/internal/models"
)

// SettingsRepository persists per-user notification preferences.
type SettingsRepository interface {
	GetOrCreateSettings(ctx context.Context, userID int) (models.NotificationSettings, error)
	UpdateSettings(ctx context.Context, settings models.NotificationSettings) (models.NotificationSettings, error)
}

// SettingsRepo is a sqlx implementation of SettingsRepository.
type SettingsRepo struct {
	db *sqlx.DB
}

// NewSettingsRepo constructs a SettingsRepo.
func NewSettingsRepo(db *sqlx.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// GetOrCreateSettings returns the user's preferences, lazily inserting
// the all-enabled default row on first use.
func (r *SettingsRepo) GetOrCreateSettings(ctx context.Context, userID int) (models.NotificationSettings, error) {
	var s models.NotificationSettings
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO notification_settings (user_id) VALUES ($1)
         ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
         RETURNING user_id, browser_notification, chat_notification, comment_notification`,
		userID).
		Scan(&s.UserID, &s.BrowserNotification, &s.ChatNotification, &s.CommentNotification)
	return s, err
}

// UpdateSettings upserts the per-type flags. browser_notification is
// not client-settable; an insert pins it on and an update leaves the
// stored value alone.
func (r *SettingsRepo) UpdateSettings(ctx context.Context, settings models.NotificationSettings) (models.NotificationSettings, error) {
	var s models.NotificationSettings
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO notification_settings (user_id, browser_notification, chat_notification, comment_notification)
         VALUES ($1, TRUE, $2, $3)
         ON CONFLICT (user_id) DO UPDATE SET
             chat_notification = EXCLUDED.chat_notification,
             comment_notification = EXCLUDED.comment_notification
         RETURNING user_id, browser_notification, chat_notification, comment_notification`,
		settings.UserID, settings.ChatNotification, settings.CommentNotification).
		Scan(&s.UserID, &s.BrowserNotification, &s.ChatNotification, &s.CommentNotification)
	return s, err
}
