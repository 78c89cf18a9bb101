package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// QueueName is the durable queue reservation events are routed to.
const QueueName = "reservation.events"

// Publisher sends reservation events.  Handlers treat failures as
// non-fatal: the reservation change has already happened.
type Publisher interface {
	Publish(ctx context.Context, ev ReservationEvent) error
}

// NopPublisher drops every event.  It is used when EVENTS_ENABLED is off.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ReservationEvent) error { return nil }

// RabbitPublisher publishes each event on its own short-lived connection.
// Event volume is one message per reservation change, so no connection is
// kept open between calls.
type RabbitPublisher struct {
	URL   string
	Queue string
}

// NewRabbitPublisher returns a publisher for url using QueueName.
func NewRabbitPublisher(url string) *RabbitPublisher {
	return &RabbitPublisher{URL: url, Queue: QueueName}
}

// ErrNacked is returned when the broker refuses an event.
var ErrNacked = errors.New("rabbitmq: event not acknowledged by broker")

// Publish declares the queue and sends ev as a persistent JSON message in
// confirm mode, waiting for the broker's ack or for ctx to end.  Errors
// are returned, not logged; the caller decides what to do with them.
func (p *RabbitPublisher) Publish(ctx context.Context, ev ReservationEvent) error {
	if err := p.publish(ctx, ev); err != nil {
		return fmt.Errorf("rabbitmq: publish %s: %w", ev.Type, err)
	}
	return nil
}

func (p *RabbitPublisher) publish(ctx context.Context, ev ReservationEvent) error {
	msg, err := encodeEvent(ev, time.Now())
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", p.Queue, err)
	}
	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("confirm mode: %w", err)
	}
	// default exchange, routing key = queue name
	dc, err := ch.PublishWithDeferredConfirmWithContext(ctx, "", p.Queue, false, false, msg)
	if err != nil {
		return err
	}
	acked, err := dc.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return ErrNacked
	}
	return nil
}

func encodeEvent(ev ReservationEvent, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(ev.Type),
		MessageId:    ev.ReservationID,
		Timestamp:    now.UTC(),
		Body:         body,
	}, nil
}
