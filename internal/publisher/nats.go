// Package publisher forwards accepted mini app events to the message bus
// so the bot side can react to them.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/ichfliegemitdemflugzeug/bankhop/internal/repository"
)

// SubjectPrefix is the subject namespace for mini app events. The event
// type is appended, e.g. webapp.events.redirect_fallback.
const SubjectPrefix = "webapp.events."

// NATSClient interface to allow mocking
type NATSClient interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher implements collect.EventPublisher
type NATSPublisher struct {
	nc NATSClient
}

// NewNATSPublisher creates a new publisher
func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: conn}
}

// PublishEventReceived publishes a stored mini app event.
func (p *NATSPublisher) PublishEventReceived(ctx context.Context, event repository.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	eventType := event.EventType
	if eventType == "" {
		eventType = "unknown"
	}

	if err := p.nc.Publish(SubjectPrefix+eventType, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	return nil
}
