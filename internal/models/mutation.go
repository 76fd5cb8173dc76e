package models

import "time"

// MutationAction is the wire tag of a mutation
type MutationAction string

const (
	ActionAdd      MutationAction = "add"
	ActionUpdate   MutationAction = "update"
	ActionComplete MutationAction = "complete"
	ActionDelete   MutationAction = "delete"
)

// TodoFields holds the optional field values carried by add and update mutations.
// A nil field means "not provided".
type TodoFields struct {
	Title       *string
	Description *string
	Priority    *Priority
	DueDate     *time.Time
}

// MutationHandler receives a mutation of exactly one kind.
// Every implementation must handle all kinds; adding a kind here breaks every handler
// until it is updated.
type MutationHandler interface {
	HandleAdd(m AddMutation)
	HandleUpdate(m UpdateMutation)
	HandleComplete(m CompleteMutation)
	HandleDelete(m DeleteMutation)
}

// Mutation is one requested change to the todo collection.
// The set of implementations is closed to this package.
type Mutation interface {
	Action() MutationAction
	Dispatch(h MutationHandler)
	sealed()
}

// AddMutation creates a new todo
type AddMutation struct {
	TodoFields
}

// UpdateMutation overwrites the provided fields of an existing todo
type UpdateMutation struct {
	TodoID string
	TodoFields
}

// CompleteMutation marks an existing todo completed
type CompleteMutation struct {
	TodoID string
}

// DeleteMutation removes an existing todo
type DeleteMutation struct {
	TodoID string
}

func (AddMutation) Action() MutationAction      { return ActionAdd }
func (UpdateMutation) Action() MutationAction   { return ActionUpdate }
func (CompleteMutation) Action() MutationAction { return ActionComplete }
func (DeleteMutation) Action() MutationAction   { return ActionDelete }

func (m AddMutation) Dispatch(h MutationHandler)      { h.HandleAdd(m) }
func (m UpdateMutation) Dispatch(h MutationHandler)   { h.HandleUpdate(m) }
func (m CompleteMutation) Dispatch(h MutationHandler) { h.HandleComplete(m) }
func (m DeleteMutation) Dispatch(h MutationHandler)   { h.HandleDelete(m) }

func (AddMutation) sealed()      {}
func (UpdateMutation) sealed()   {}
func (CompleteMutation) sealed() {}
func (DeleteMutation) sealed()   {}
