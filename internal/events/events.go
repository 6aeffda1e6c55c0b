package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	skafka "github.com/segmentio/kafka-go"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Change describes one write to the entity store. Consumers use it to refresh
// cached dashboard views.
type Change struct {
	ID         string    `json:"id"`
	Entity     string    `json:"entity"`
	EntityID   string    `json:"entity_id"`
	Action     Action    `json:"action"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewChange stamps a change with a fresh id and the current time.
func NewChange(entity, entityID string, action Action, payload any) Change {
	return Change{
		ID:         uuid.NewString(),
		Entity:     entity,
		EntityID:   entityID,
		Action:     action,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher sends change events somewhere outside the process.
type Publisher interface {
	Publish(ctx context.Context, c Change) error
	Close() error
}

// Writer is the subset of kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// KafkaPublisher writes each change as a JSON message keyed by entity and id,
// so every change to one entity lands on the same partition.
type KafkaPublisher struct {
	writer Writer
}

// NewKafkaPublisher connects to a comma-separated broker list.
func NewKafkaPublisher(brokers, topic string) *KafkaPublisher {
	w := &skafka.Writer{
		Addr:                   skafka.TCP(strings.Split(brokers, ",")...),
		Topic:                  topic,
		Balancer:               &skafka.Hash{},
		RequiredAcks:           skafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
	return &KafkaPublisher{writer: w}
}

// NewKafkaPublisherWithWriter allows injecting a test writer.
func NewKafkaPublisherWithWriter(w Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, c Change) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}
	msg := skafka.Message{
		Key:   []byte(c.Entity + ":" + c.EntityID),
		Value: b,
		Headers: []skafka.Header{
			{Key: "event-id", Value: []byte(c.ID)},
			{Key: "action", Value: []byte(c.Action)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write error: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher discards every change. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, c Change) error { return nil }
func (NoopPublisher) Close() error                                { return nil }

// LogPublisher logs each change and forwards it to Next when set.
type LogPublisher struct {
	Next Publisher
}

func (p LogPublisher) Publish(ctx context.Context, c Change) error {
	log.Printf("[EVENT] %s %s %s", c.Entity, c.Action, c.EntityID)
	if p.Next == nil {
		return nil
	}
	return p.Next.Publish(ctx, c)
}

func (p LogPublisher) Close() error {
	if p.Next == nil {
		return nil
	}
	return p.Next.Close()
}
