package events

import (
	"context"
)

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
	HealthCheck(ctx context.Context) error
}

// NopPublisher discards every event
type NopPublisher struct{}

var _ Publisher = NopPublisher{}

// Publish does nothing
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close does nothing
func (NopPublisher) Close() error { return nil }

// HealthCheck always succeeds
func (NopPublisher) HealthCheck(context.Context) error { return nil }
