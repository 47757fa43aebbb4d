// Package pubsub is a small typed publish/subscribe broker used to move
// events from background goroutines (storage, file watcher, logger) into
// the Bubble Tea update loop.
package pubsub

import (
	"context"
	"time"
)

// EventType classifies a published event.
type EventType string

const (
	CreatedEvent EventType = "created"
	UpdatedEvent EventType = "updated"
	DeletedEvent EventType = "deleted"
)

// Event carries a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber hands out subscription channels.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher publishes typed payloads.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
