package notify

import (
	"context"
	"log"
	"time"
)

// Notifier emits envelopes for recipients with no live connection; the
// forum's notification service turns them into list badges or emails.
// Dispatch itself stays outside this service.
type Notifier struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
}

// Envelope is the versioned wire format consumed by the notification service.
type Envelope struct {
	SchemaVersion int    `json:"schema_version"`
	EventType     string `json:"event_type"`
	OccurredAt    string `json:"occurred_at"`
	Service       string `json:"service"`
	Environment   string `json:"environment"`
	FromUserID    int64  `json:"from_user_id"`
	ToUserID      int64  `json:"to_user_id"`
	Preview       string `json:"preview"`
}

// NewNotifier constructs a Notifier.
func NewNotifier(publisher Publisher, routingKey, service, environment string) *Notifier {
	return &Notifier{
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
	}
}

// MessageReceived reports a private message whose recipient is offline.
func (n *Notifier) MessageReceived(ctx context.Context, fromUserID, toUserID int64, preview string) {
	if n == nil || n.publisher == nil {
		return
	}

	if len(preview) > 140 {
		preview = preview[:140]
	}
	envelope := Envelope{
		SchemaVersion: 1,
		EventType:     "private_message_received",
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       n.service,
		Environment:   n.environment,
		FromUserID:    fromUserID,
		ToUserID:      toUserID,
		Preview:       preview,
	}

	if err := n.publisher.Publish(ctx, n.routingKey, envelope); err != nil {
		log.Printf("notify publish failed: %v", err)
	}
}
