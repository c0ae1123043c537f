package observability

import (
	"os"
	"time"
)

// EventEnvelope is the wire shape of every event the realtime core publishes
// for forum collaborators (the CRUD layer and the notification service).
// Routing keys follow "<area>.<event>": presence.changed, chat.global.message,
// chat.private.message, ws_events.socket.
type EventEnvelope struct {
	Service     string      `json:"service,omitempty"`
	Environment string      `json:"environment,omitempty"`
	OccurredAt  string      `json:"occurred_at,omitempty"`
	EventType   string      `json:"event_type"`
	EventName   string      `json:"event_name"`
	Payload     interface{} `json:"payload"`
}

// stamped fills the envelope metadata call sites leave blank. Explicit values
// are kept.
func (e EventEnvelope) stamped() EventEnvelope {
	if e.Service == "" {
		e.Service = "forum-realtime"
	}
	if e.Environment == "" {
		e.Environment = os.Getenv("ENVIRONMENT")
	}
	if e.OccurredAt == "" {
		e.OccurredAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	return e
}

// BuildHeaders assembles the AMQP headers propagated with an event so
// consumers can correlate it back to the originating request and trace.
func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
