package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	routingKey string
	message    interface{}
	headers    map[string]string
}

func (c *capturePublisher) PublishJSON(_ context.Context, routingKey string, message interface{}, headers map[string]string) error {
	c.routingKey = routingKey
	c.message = message
	c.headers = headers
	return nil
}

func TestPublishEventStampsEnvelope(t *testing.T) {
	capture := &capturePublisher{}
	SetPublisher(capture)
	defer SetPublisher(nil)

	err := PublishEvent(context.Background(), "presence.changed",
		EventEnvelope{EventType: "presence", EventName: "presence_changed", Payload: "p"},
		BuildHeaders("req-1", "trace-1"))
	require.NoError(t, err)

	require.Equal(t, "presence.changed", capture.routingKey)
	envelope := capture.message.(EventEnvelope)
	require.Equal(t, "forum-realtime", envelope.Service)
	require.NotEmpty(t, envelope.OccurredAt)
	require.Equal(t, "presence", envelope.EventType)
	require.Equal(t, "presence_changed", envelope.EventName)
	require.Equal(t, "req-1", capture.headers["x-request-id"])
	require.Equal(t, "trace-1", capture.headers["trace_id"])
}

func TestPublishEventKeepsExplicitMetadata(t *testing.T) {
	capture := &capturePublisher{}
	SetPublisher(capture)
	defer SetPublisher(nil)

	err := PublishEvent(context.Background(), "chat.global.message",
		EventEnvelope{Service: "other", OccurredAt: "2026-01-01T00:00:00Z", EventType: "chat", EventName: "global_message"},
		nil)
	require.NoError(t, err)

	envelope := capture.message.(EventEnvelope)
	require.Equal(t, "other", envelope.Service)
	require.Equal(t, "2026-01-01T00:00:00Z", envelope.OccurredAt)
}

func TestPublishEventNoopWithoutPublisher(t *testing.T) {
	SetPublisher(nil)
	require.NoError(t, PublishEvent(context.Background(), "presence.changed", EventEnvelope{}, nil))
}

func TestBuildHeadersSkipsEmptyValues(t *testing.T) {
	headers := BuildHeaders("req-1", "")
	require.Equal(t, map[string]string{"x-request-id": "req-1"}, headers)
	require.Empty(t, BuildHeaders("", ""))
}
