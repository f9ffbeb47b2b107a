package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"realtime-service/internal/models"
)

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, roomID, senderID int, content string) (models.Message, error)
	ListMessages(ctx context.Context, roomID int) ([]models.MessageView, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a message against its room.
func (r *MessageRepo) CreateMessage(ctx context.Context, roomID, senderID int, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO chat_messages (room_id, sender_id, content) VALUES ($1, $2, $3)
         RETURNING id, room_id, sender_id, content, created_at`,
		roomID, senderID, content).
		Scan(&msg.ID, &msg.RoomID, &msg.SenderID, &msg.Content, &msg.CreatedAt)
	return msg, err
}

// ListMessages returns a room's history in send order with sender names.
func (r *MessageRepo) ListMessages(ctx context.Context, roomID int) ([]models.MessageView, error) {
	query := `SELECT cm.id, cm.room_id, cm.sender_id, cm.content, cm.created_at,
            COALESCE(NULLIF(u.name, ''), u.username) AS sender_name
        FROM chat_messages cm
        JOIN users u ON u.id = cm.sender_id
        WHERE cm.room_id=$1
        ORDER BY cm.created_at ASC`
	var msgs []models.MessageView
	err := r.db.SelectContext(ctx, &msgs, query, roomID)
	return msgs, err
}
