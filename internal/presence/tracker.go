package presence

import (
	"context"
	"log"

	"realtime-service/internal/models"
	"realtime-service/internal/observability"
	"realtime-service/internal/repositories"
	"realtime-service/internal/ws"
)

// Tracker keeps the persisted online state in step with live
// connections and broadcasts changes to every connected client. Clients
// filter presence events by relevance themselves.
type Tracker struct {
	presenceRepo repositories.PresenceRepository
	registry     *ws.Registry
}

// NewTracker builds a Tracker.
func NewTracker(presenceRepo repositories.PresenceRepository, registry *ws.Registry) *Tracker {
	return &Tracker{presenceRepo: presenceRepo, registry: registry}
}

// SetOnline upserts the user's status and broadcasts the change. The
// broadcast is best effort; a persisted record with no broadcast beats
// the reverse.
func (t *Tracker) SetOnline(ctx context.Context, userID int, isOnline bool) error {
	if _, err := t.presenceRepo.UpsertStatus(ctx, userID, isOnline); err != nil {
		return err
	}

	t.registry.Broadcast(models.NewPresenceEvent(userID, isOnline), nil)
	observability.IncPresenceChange(isOnline)
	_ = observability.PublishEvent(ctx, "presence.changed", observability.EventEnvelope{
		EventType: "presence",
		EventName: "presence_changed",
		Payload:   map[string]interface{}{"user_id": userID, "is_online": isOnline},
	}, nil)
	return nil
}

// HandleDisconnect runs presence teardown for a closed connection. Only
// the identity's last connection flips it offline; earlier closes of a
// multi-tab user leave the record untouched.
func (t *Tracker) HandleDisconnect(ctx context.Context, userID int, wasAuthed, last bool) {
	if !wasAuthed || !last {
		return
	}
	if err := t.SetOnline(ctx, userID, false); err != nil {
		log.Printf("presence teardown for user %d: %v", userID, err)
	}
}

// Status is a read-through to the persisted record; it never consults
// live connection state.
func (t *Tracker) Status(ctx context.Context, userID int) (models.PresenceRecord, error) {
	return t.presenceRepo.GetStatus(ctx, userID)
}
