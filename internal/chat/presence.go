package chat

import (
	"context"
	"time"

	"forum-realtime/internal/models"
	"forum-realtime/internal/observability"
	"forum-realtime/internal/registry"
	"forum-realtime/internal/repositories"
	"forum-realtime/internal/ws"
)

// Tracker owns the per-user ONLINE/OFFLINE state machine. It is the only
// writer of the connection registry and of the users table presence columns.
type Tracker struct {
	users    repositories.UserRepository
	registry registry.Registry
	hub      *ws.Hub
}

// NewTracker constructs a Tracker.
func NewTracker(users repositories.UserRepository, reg registry.Registry, hub *ws.Hub) *Tracker {
	return &Tracker{users: users, registry: reg, hub: hub}
}

// GoOnline transitions the user to ONLINE: register the connection, persist
// the presence columns, then broadcast. The persistence write happens before
// the broadcast so a collaborator reacting to the event can trust a
// subsequent presence read.
func (t *Tracker) GoOnline(ctx context.Context, userID int64, connID string) error {
	if err := t.registry.Register(ctx, userID, connID); err != nil {
		return err
	}
	if err := t.users.SetOnline(ctx, userID, connID); err != nil {
		return err
	}

	now := time.Now().UTC()
	t.broadcast(ctx, userID, true, now)
	observability.IncPresenceTransition("online")
	return nil
}

// GoOffline transitions the user to OFFLINE, but only when the disconnecting
// connection still owns the registry mapping. A reconnect or newer tab has
// already overwritten the mapping; the older connection's close must not
// mark the user offline.
func (t *Tracker) GoOffline(ctx context.Context, userID int64, connID string) error {
	owner, ok, err := t.registry.Lookup(ctx, userID)
	if err != nil {
		return err
	}
	if !ok || owner != connID {
		return nil
	}

	if err := t.users.SetOffline(ctx, userID); err != nil {
		return err
	}
	if err := t.registry.Unregister(ctx, userID, connID); err != nil {
		return err
	}

	now := time.Now().UTC()
	t.broadcast(ctx, userID, false, now)
	observability.IncPresenceTransition("offline")
	return nil
}

func (t *Tracker) broadcast(ctx context.Context, userID int64, isOnline bool, lastSeen time.Time) {
	event := models.StatusChangedEvent{UserID: userID, IsOnline: isOnline, LastSeen: &lastSeen}
	t.hub.BroadcastAll(models.EventStatusChanged, event)
	_ = observability.PublishEvent(ctx, "presence.changed", observability.EventEnvelope{
		EventType: "presence",
		EventName: "presence_changed",
		Payload:   event,
	}, nil)
}
