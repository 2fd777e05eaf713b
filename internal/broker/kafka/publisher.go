package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/logger"

	"github.com/google/uuid"
)

// envelope is the wire shape of a booking event on the topic.
type envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	RentalID   int32           `json:"rental_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// requestedPayload carries user ids only; names and emails stay off the topic.
type requestedPayload struct {
	Rental   domain.Rental  `json:"rental"`
	Listing  domain.Listing `json:"listing"`
	OwnerID  int32          `json:"owner_id"`
	RenterID int32          `json:"renter_id"`
	At       time.Time      `json:"at"`
}

func payloadOf(event domain.Event) any {
	if e, ok := event.(domain.BookingRequested); ok {
		return requestedPayload{Rental: e.Rental, Listing: e.Listing, OwnerID: e.Owner.ID, RenterID: e.Renter.ID, At: e.At}
	}
	return event
}

// Publisher writes booking lifecycle events to a Kafka topic, keyed by
// rental id so every event of a rental lands on the same partition.
type Publisher struct {
	producer *Producer
	topic    string
}

func NewPublisher(producer *Producer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(payloadOf(event))
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.EventName(), err)
	}
	env := envelope{
		ID:         uuid.NewString(),
		Type:       event.EventName(),
		RentalID:   event.AggregateID(),
		OccurredAt: event.OccurredAt().UTC(),
		Payload:    payload,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	key := strconv.Itoa(int(event.AggregateID()))
	logger.ExternalServiceCall("kafka", "SendMessage", "topic", p.topic, "key", key, "type", env.Type)
	err = p.producer.Send(ctx, p.topic, key, body, map[string]string{
		"event-id":   env.ID,
		"event-type": env.Type,
	})
	logger.ExternalServiceResult("kafka", "SendMessage", err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", env.Type, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
