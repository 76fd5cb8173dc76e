package models

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority represents how important a todo is
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank returns the position of the priority in the order low < medium < high < urgent.
// Unknown values rank below low.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityUrgent:
		return 4
	default:
		return 0
	}
}

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// ParsePriority parses a priority tag, case-insensitively
func ParsePriority(value string) (Priority, bool) {
	p := Priority(strings.ToLower(strings.TrimSpace(value)))
	return p, p.Valid()
}

// TodoStatus represents the status of a todo
type TodoStatus string

const (
	TodoStatusPending    TodoStatus = "pending"
	TodoStatusInProgress TodoStatus = "in_progress"
	TodoStatusCompleted  TodoStatus = "completed"
)

// Rank returns the display position of the status (pending first)
func (s TodoStatus) Rank() int {
	switch s {
	case TodoStatusPending:
		return 0
	case TodoStatusInProgress:
		return 1
	case TodoStatusCompleted:
		return 2
	default:
		return 3
	}
}

// Todo represents a todo item
type Todo struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title" validate:"required"`
	Description   *string    `json:"description"`
	Priority      Priority   `json:"priority" validate:"priority"`
	Status        TodoStatus `json:"status" validate:"todo_status"`
	CreatedDate   time.Time  `json:"created_date"`
	DueDate       *time.Time `json:"due_date"`
	CompletedDate *time.Time `json:"completed_date"`
}

// MarkCompleted sets the todo to completed at the given instant.
// Calling it on a completed todo moves the completion date forward.
func (t *Todo) MarkCompleted(at time.Time) {
	t.Status = TodoStatusCompleted
	t.CompletedDate = &at
}

// IsCompleted reports whether the todo has been completed
func (t *Todo) IsCompleted() bool {
	return t.Status == TodoStatusCompleted
}

// MatchesID reports whether the todo's identifier equals the given textual identifier.
// Identifiers that are not UUIDs never match.
func (t *Todo) MatchesID(id string) bool {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return false
	}
	return parsed == t.ID
}

// SortForDisplay returns a copy of todos ordered by status, then priority (highest first),
// then creation date (oldest first). The input slice is not modified.
func SortForDisplay(todos []Todo) []Todo {
	sorted := make([]Todo, len(todos))
	copy(sorted, todos)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Status.Rank() != b.Status.Rank() {
			return a.Status.Rank() < b.Status.Rank()
		}
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		return a.CreatedDate.Before(b.CreatedDate)
	})

	return sorted
}
