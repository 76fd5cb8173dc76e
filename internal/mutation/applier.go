// Package mutation applies requested todo changes to a todo collection.
package mutation

import (
	"strings"

	"github.com/benvon/todo-chat/internal/clock"
	"github.com/benvon/todo-chat/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Applier applies mutations one at a time, in order, with no rollback.
// Mutations that target an unknown todo, or an add without a title, are skipped silently.
type Applier struct {
	clock  clock.Clock
	newID  func() uuid.UUID
	logger *zap.Logger
}

// Option configures an Applier
type Option func(*Applier)

// WithIDGenerator overrides how identifiers for new todos are generated
func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(a *Applier) {
		if gen != nil {
			a.newID = gen
		}
	}
}

// WithLogger sets the logger used to report skipped mutations
func WithLogger(logger *zap.Logger) Option {
	return func(a *Applier) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewApplier creates an applier that timestamps changes with c
func NewApplier(c clock.Clock, opts ...Option) *Applier {
	if c == nil {
		c = clock.System{}
	}
	a := &Applier{
		clock:  c,
		newID:  uuid.New,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Result summarizes one Apply call
type Result struct {
	Todos   []models.Todo
	Applied int
	Skipped int
}

// Apply returns a new collection with every mutation applied in order.
// The input slice is not modified.
func (a *Applier) Apply(mutations []models.Mutation, todos []models.Todo) Result {
	state := &applyState{
		applier: a,
		todos:   make([]models.Todo, len(todos)),
	}
	copy(state.todos, todos)

	for _, m := range mutations {
		if m == nil {
			continue
		}
		m.Dispatch(state)
	}

	return Result{
		Todos:   state.todos,
		Applied: state.applied,
		Skipped: state.skipped,
	}
}

// applyState implements models.MutationHandler over a working copy of the collection
type applyState struct {
	applier *Applier
	todos   []models.Todo
	applied int
	skipped int
}

var _ models.MutationHandler = (*applyState)(nil)

func (s *applyState) HandleAdd(m models.AddMutation) {
	if m.Title == nil || strings.TrimSpace(*m.Title) == "" {
		s.skip(m.Action(), "", "missing title")
		return
	}

	priority := models.PriorityMedium
	if m.Priority != nil {
		priority = *m.Priority
	}

	todo := models.Todo{
		ID:          s.applier.newID(),
		Title:       strings.TrimSpace(*m.Title),
		Description: copyString(m.Description),
		Priority:    priority,
		Status:      models.TodoStatusPending,
		CreatedDate: s.applier.clock.Now(),
	}
	if m.DueDate != nil {
		due := *m.DueDate
		todo.DueDate = &due
	}

	s.todos = append(s.todos, todo)
	s.applied++
}

func (s *applyState) HandleUpdate(m models.UpdateMutation) {
	i := s.find(m.TodoID)
	if i < 0 {
		s.skip(m.Action(), m.TodoID, "todo not found")
		return
	}

	todo := &s.todos[i]
	if m.Title != nil && strings.TrimSpace(*m.Title) != "" {
		todo.Title = strings.TrimSpace(*m.Title)
	}
	if m.Description != nil {
		todo.Description = copyString(m.Description)
	}
	if m.Priority != nil {
		todo.Priority = *m.Priority
	}
	if m.DueDate != nil {
		due := *m.DueDate
		todo.DueDate = &due
	}
	s.applied++
}

func (s *applyState) HandleComplete(m models.CompleteMutation) {
	i := s.find(m.TodoID)
	if i < 0 {
		s.skip(m.Action(), m.TodoID, "todo not found")
		return
	}
	s.todos[i].MarkCompleted(s.applier.clock.Now())
	s.applied++
}

func (s *applyState) HandleDelete(m models.DeleteMutation) {
	i := s.find(m.TodoID)
	if i < 0 {
		s.skip(m.Action(), m.TodoID, "todo not found")
		return
	}
	s.todos = append(s.todos[:i], s.todos[i+1:]...)
	s.applied++
}

// find returns the index of the todo with the given identifier, or -1
func (s *applyState) find(id string) int {
	for i := range s.todos {
		if s.todos[i].MatchesID(id) {
			return i
		}
	}
	return -1
}

func (s *applyState) skip(action models.MutationAction, todoID, reason string) {
	s.skipped++
	s.applier.logger.Debug("mutation_skipped",
		zap.String("action", string(action)),
		zap.String("todo_id", todoID),
		zap.String("reason", reason),
	)
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
