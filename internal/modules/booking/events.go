// README: Booking lifecycle events published to Kafka after each committed change.
package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	EventCreated = "booking.created"
	EventUpdated = "booking.updated"
	EventDeleted = "booking.deleted"
)

type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Booking    Booking   `json:"booking"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher keys messages by booking id so one booking's events stay ordered.
type KafkaPublisher struct {
	w messageWriter
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{w: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	e.Booking.User = nil
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.Type, err)
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:     []byte(e.Booking.ID),
		Value:   payload,
		Headers: []kafka.Header{{Key: "type", Value: []byte(e.Type)}},
		Time:    e.OccurredAt,
	})
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }
