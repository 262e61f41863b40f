// Package events publishes front desk transition events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MarkoPoloResearchLab/frontdesk/pkg/frontdesk"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// DefaultQueue receives check-in and check-out events.
	DefaultQueue       = "frontdesk.transitions"
	contentTypeJSON    = "application/json"
	defaultExchange    = ""
	publishTimeout     = 5 * time.Second
	errorPrefixPublish = "events: publish"
)

var errPublisherClosed = errors.New("events: publisher closed")

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Message is the JSON body of a published event.
type Message struct {
	Type          string    `json:"type"`
	ReservationID string    `json:"reservation_id"`
	RoomID        string    `json:"room_id"`
	GuestID       string    `json:"guest_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher implements frontdesk.EventPublisher over a durable queue with persistent messages.
type Publisher struct {
	connection *amqp.Connection
	channel    channel
	queue      string
}

// Dial connects to url and declares queue. An empty queue selects DefaultQueue.
func Dial(url string, queue string) (*Publisher, error) {
	connection, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events: dial: %w", err)
	}
	amqpChannel, err := connection.Channel()
	if err != nil {
		_ = connection.Close()
		return nil, fmt.Errorf("events: open channel: %w", err)
	}
	publisher, err := newPublisher(amqpChannel, queue)
	if err != nil {
		_ = connection.Close()
		return nil, err
	}
	publisher.connection = connection
	return publisher, nil
}

func newPublisher(amqpChannel channel, queue string) (*Publisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	if _, err := amqpChannel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = amqpChannel.Close()
		return nil, fmt.Errorf("events: declare %s: %w", queue, err)
	}
	return &Publisher{channel: amqpChannel, queue: queue}, nil
}

// Publish sends event as a persistent JSON message routed to the queue.
func (publisher *Publisher) Publish(ctx context.Context, event frontdesk.TransitionEvent) error {
	if publisher.channel == nil {
		return errPublisherClosed
	}
	body, err := json.Marshal(Message{
		Type:          event.Type,
		ReservationID: event.ReservationID.String(),
		RoomID:        event.RoomID.String(),
		GuestID:       event.GuestID.String(),
		OccurredAt:    event.OccurredAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", errorPrefixPublish, err)
	}
	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	err = publisher.channel.PublishWithContext(publishCtx, defaultExchange, publisher.queue, false, false, amqp.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt.UTC(),
		Type:         event.Type,
		MessageId:    event.ReservationID.String() + ":" + event.Type,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("%s %s: %w", errorPrefixPublish, event.Type, err)
	}
	return nil
}

// Close releases the channel and connection.
func (publisher *Publisher) Close() error {
	var closeErr error
	if publisher.channel != nil {
		closeErr = publisher.channel.Close()
		publisher.channel = nil
	}
	if publisher.connection != nil {
		closeErr = errors.Join(closeErr, publisher.connection.Close())
		publisher.connection = nil
	}
	return closeErr
}
