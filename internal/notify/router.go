package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"realtime-service/internal/models"
	"realtime-service/internal/observability"
	"realtime-service/internal/repositories"
	"realtime-service/internal/ws"
)

// Router is the single pipeline every notification producer goes
// through: preference gate, durable row, live push. Producers treat
// failures here as non-fatal; the triggering action already succeeded.
type Router struct {
	notificationRepo repositories.NotificationRepository
	settingsRepo     repositories.SettingsRepository
	registry         *ws.Registry
}

// NewRouter builds a Router.
func NewRouter(notificationRepo repositories.NotificationRepository, settingsRepo repositories.SettingsRepository, registry *ws.Registry) *Router {
	return &Router{
		notificationRepo: notificationRepo,
		settingsRepo:     settingsRepo,
		registry:         registry,
	}
}

// Notify delivers a typed notification to a recipient. A disabled
// preference is a hard gate: no row, no push, no trace of the event.
func (r *Router) Notify(ctx context.Context, recipientID int, typ, title string, payload models.NotificationPayload) error {
	settings, err := r.settingsRepo.GetOrCreateSettings(ctx, recipientID)
	if err != nil {
		return fmt.Errorf("load settings for user %d: %w", recipientID, err)
	}
	if !settings.Allows(typ) {
		observability.IncNotificationSuppressed(typ, "preference")
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	notification, err := r.notificationRepo.CreateNotification(ctx, recipientID, title, typ, raw)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	observability.IncNotificationCreated(typ)

	// the push rides on whatever connections are live right now; the
	// durable row is the source of truth
	r.registry.SendToUser(recipientID, models.NewNotificationEvent(title, typ, payload))

	_ = observability.PublishEvent(ctx, "notifications.created", observability.EventEnvelope{
		EventType: "notifications",
		EventName: "notification_created",
		Payload: map[string]interface{}{
			"notification_id": notification.ID,
			"recipient_id":    recipientID,
			"type":            typ,
		},
	}, nil)
	return nil
}

// UnreadCount computes the badge value: unread message notifications
// contribute their collapsed messageCount, everything else counts as
// one. A payload that fails to parse counts as one. This is a wire
// contract with the frontend, not an optimization to replace with
// COUNT(*).
func (r *Router) UnreadCount(ctx context.Context, userID int) (int, error) {
	unread, err := r.notificationRepo.UnreadNotifications(ctx, userID)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, n := range unread {
		var payload models.NotificationPayload
		if err := json.Unmarshal(n.Payload, &payload); err != nil {
			total++
			continue
		}
		if payload.MessageCount > 0 {
			total += payload.MessageCount
		} else {
			total++
		}
	}
	return total, nil
}
