// Package pubsub provides a small generic publish/subscribe broker used to
// fan out submissions and log entries to in-process listeners.
package pubsub

import (
	"context"
	"time"
)

// EventType identifies what happened.
type EventType string

const (
	// SubmittedEvent is published when a registration is accepted.
	SubmittedEvent EventType = "submitted"
	// ResetEvent is published when a form returns to its initial state.
	ResetEvent EventType = "reset"
	// LoggedEvent is published for every written log entry.
	LoggedEvent EventType = "logged"
)

// Event is a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher publishes events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
