package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
)

// streamPublisher is the part of jetstream.JetStream the Publisher uses.
type streamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher provides typed methods for publishing events to NATS JetStream.
type Publisher struct {
	js streamPublisher
}

// NewPublisher creates a new Publisher. js is usually Client.JetStream().
func NewPublisher(js streamPublisher) *Publisher {
	return &Publisher{js: js}
}

// PublishTurnCompleted publishes the summary of a finished turn. Events
// without an ID get a fresh one, which is also the JetStream message id.
func (p *Publisher) PublishTurnCompleted(ctx context.Context, event TurnCompleted) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	return p.publish(ctx, SubjectTurnCompleted, event.ID, event)
}

func (p *Publisher) publish(ctx context.Context, subject, msgID string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling event for %s: %w", subject, err)
	}
	_, err = p.js.Publish(ctx, subject, payload, jetstream.WithMsgID(msgID))
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}
