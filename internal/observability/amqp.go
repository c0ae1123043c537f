package observability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the sink for forum events. The AMQP implementation is the only
// real one; tests substitute a capture.
type Publisher interface {
	PublishJSON(ctx context.Context, routingKey string, message interface{}, headers map[string]string) error
}

// AMQPPublisher publishes forum events on a durable topic exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewAMQPPublisher dials the broker and declares the exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	if url == "" {
		return nil, errors.New("amqp url is empty")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}

	return &AMQPPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// PublishJSON publishes one persistent JSON message with the given headers.
func (p *AMQPPublisher) PublishJSON(ctx context.Context, routingKey string, message interface{}, headers map[string]string) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal event for %q: %w", routingKey, err)
	}

	amqpHeaders := amqp.Table{}
	for key, value := range headers {
		amqpHeaders[key] = value
	}

	return p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		AppId:        "forum-realtime",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers:      amqpHeaders,
	})
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

var defaultPublisher Publisher

// SetPublisher installs the process-wide event publisher. Leaving it unset
// keeps event publishing a no-op.
func SetPublisher(publisher Publisher) {
	defaultPublisher = publisher
}

// PublishEvent stamps the envelope metadata and hands it to the installed
// publisher. Publish failures are counted; delivery is best-effort.
func PublishEvent(ctx context.Context, routingKey string, envelope EventEnvelope, headers map[string]string) error {
	if defaultPublisher == nil {
		return nil
	}

	err := defaultPublisher.PublishJSON(ctx, routingKey, envelope.stamped(), headers)
	if err != nil {
		IncAMQPPublishError()
	}
	return err
}
