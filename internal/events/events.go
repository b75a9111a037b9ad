// Package events publishes booking and vendor lifecycle events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "pahadigo.events"
	ExchangeKind = "topic"
)

// Routing keys.
const (
	BookingCreated  = "booking.created"
	BookingPaid     = "booking.paid"
	BookingRefunded = "booking.refunded"
	BookingPayout   = "booking.payout"
	BookingCancel   = "booking.cancelled"
	VendorApproval  = "vendor.approval"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Envelope wraps every message body.
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

type AMQPPublisher struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, ExchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	return &AMQPPublisher{conn: conn, channel: ch}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(Envelope{Type: routingKey, OccurredAt: time.Now().UTC(), Data: payload})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	// amqp channels are not safe for concurrent publishes
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.PublishWithContext(ctx, ExchangeName, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	}); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	slog.Debug("event published", "exchange", ExchangeName, "routing_key", routingKey)
	return nil
}

func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// Noop drops every event. Used when RABBITMQ_URL is unset.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }

// PublishAsync sends an event without blocking the caller. Failures are logged.
func PublishAsync(p Publisher, routingKey string, payload any) {
	if p == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Publish(ctx, routingKey, payload); err != nil {
			slog.Error("event publish failed", "routing_key", routingKey, "action", "event_publish", "error", err.Error())
		}
	}()
}
