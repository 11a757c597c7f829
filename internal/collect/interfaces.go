package collect

import (
	"context"

	"github.com/ichfliegemitdemflugzeug/bankhop/internal/repository"
)

// EventPublisher forwards accepted events to the message bus.
type EventPublisher interface {
	PublishEventReceived(ctx context.Context, event repository.Event) error
}

// Broadcaster pushes a message to connected live-feed clients.
type Broadcaster interface {
	Broadcast(message []byte)
}

// StatsProvider serves aggregated event statistics.
type StatsProvider interface {
	GetStats(ctx context.Context) (*repository.EventStats, error)
}
