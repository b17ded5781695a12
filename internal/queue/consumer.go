package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Outcome is the handler's verdict on a delivery.
type Outcome int

const (
	// Ack acknowledges the delivery: processed, or dropped as
	// permanently undeliverable.
	Ack Outcome = iota
	// Requeue rejects the delivery so the broker redelivers it after a
	// transient failure.
	Requeue
)

// Handler processes one raw delivery body at a time.
type Handler interface {
	Handle(ctx context.Context, body []byte) Outcome
}

type Consumer struct {
	url               string
	queueName         string
	reconnectInterval time.Duration
	handler           Handler
}

func NewConsumer(url, queueName string, reconnectInterval time.Duration, handler Handler) *Consumer {
	return &Consumer{
		url:               url,
		queueName:         queueName,
		reconnectInterval: reconnectInterval,
		handler:           handler,
	}
}

// Run consumes the queue until ctx is cancelled. Broker unavailability is
// never fatal: the loop reconnects at a fixed interval, logging each
// attempt. Messages in flight when the connection drops are redelivered
// because acknowledgment happens only after handling completes.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			slog.ErrorContext(ctx, "broker unavailable, retrying",
				"queue", c.queueName,
				"retry_in", c.reconnectInterval,
				"error", err)
			if err := sleep(ctx, c.reconnectInterval); err != nil {
				return err
			}
			continue
		}

		slog.InfoContext(ctx, "consumer connected to broker", "queue", c.queueName)

		err = c.consume(ctx, conn)
		conn.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}

		slog.ErrorContext(ctx, "consumer connection lost, reconnecting",
			"queue", c.queueName,
			"retry_in", c.reconnectInterval,
			"error", err)
		if err := sleep(ctx, c.reconnectInterval); err != nil {
			return err
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("conn.Channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(c.queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("ch.QueueDeclare: %w", err)
	}

	// One unacknowledged message at a time: the worker is fully
	// sequential.
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("ch.Qos: %w", err)
	}

	deliveries, err := ch.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("ch.Consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}

			switch c.handler.Handle(ctx, delivery.Body) {
			case Requeue:
				if err := delivery.Nack(false, true); err != nil {
					return fmt.Errorf("delivery.Nack: %w", err)
				}
			default:
				if err := delivery.Ack(false); err != nil {
					return fmt.Errorf("delivery.Ack: %w", err)
				}
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
