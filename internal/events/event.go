// Package events publishes conversation changes to interested consumers.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/benvon/todo-chat/internal/models"
	"github.com/google/uuid"
)

// EventType represents the type of event. It doubles as the routing key.
type EventType string

const (
	// EventMessageCreated is emitted for every message appended to the log
	EventMessageCreated EventType = "message_created"
	// EventTodosUpdated carries the todo collection after a turn
	EventTodosUpdated EventType = "todos_updated"
)

// Event is the envelope published for every change
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       EventType       `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

func newEvent(eventType EventType, payload any, at time.Time) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		OccurredAt: at,
		Payload:    data,
	}, nil
}

// NewMessageCreated builds a message_created event
func NewMessageCreated(message models.Message, at time.Time) (Event, error) {
	return newEvent(EventMessageCreated, message, at)
}

// NewTodosUpdated builds a todos_updated event. A nil collection is sent as [].
func NewTodosUpdated(todos []models.Todo, at time.Time) (Event, error) {
	if todos == nil {
		todos = []models.Todo{}
	}
	return newEvent(EventTodosUpdated, todos, at)
}
