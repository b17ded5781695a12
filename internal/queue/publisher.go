// Package queue connects the service to RabbitMQ: a fire-and-forget
// publisher on the write path and a supervised consumer loop feeding the
// worker. Delivery is at-least-once; deduplication happens downstream.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Message is the queue wire format. It carries the order identifier only;
// the worker re-reads the authoritative record from the store.
type Message struct {
	OrderID string `json:"order_id"`
}

// PublishError marks the broker as unreachable at publish time. The caller
// decides whether to surface it; the order itself is already persisted.
type PublishError struct {
	Err error
}

func (e *PublishError) Error() string {
	return "publish to queue: " + e.Err.Error()
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

type Publisher struct {
	url       string
	queueName string
}

func NewPublisher(url, queueName string) *Publisher {
	return &Publisher{url: url, queueName: queueName}
}

// Publish sends a persistent creation message keyed by the order ID.
// One connection per publish; a pool would replace this at higher
// creation rates.
func (p *Publisher) Publish(ctx context.Context, orderID uuid.UUID) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return &PublishError{Err: fmt.Errorf("amqp.Dial: %w", err)}
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return &PublishError{Err: fmt.Errorf("conn.Channel: %w", err)}
	}
	defer ch.Close()

	// Declaration is idempotent, so publisher and consumer can start in
	// any order.
	if _, err := ch.QueueDeclare(p.queueName, true, false, false, false, nil); err != nil {
		return &PublishError{Err: fmt.Errorf("ch.QueueDeclare: %w", err)}
	}

	body, err := json.Marshal(Message{OrderID: orderID.String()})
	if err != nil {
		return &PublishError{Err: fmt.Errorf("json.Marshal: %w", err)}
	}

	err = ch.PublishWithContext(ctx, "", p.queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return &PublishError{Err: fmt.Errorf("ch.PublishWithContext: %w", err)}
	}

	slog.InfoContext(ctx, "published order to queue", "queue", p.queueName, "order_id", orderID)
	return nil
}
