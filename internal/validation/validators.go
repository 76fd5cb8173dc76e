package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/benvon/todo-chat/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	if err := Validate.RegisterValidation("priority", validatePriority); err != nil {
		panic(fmt.Sprintf("failed to register priority validator: %v", err))
	}
	if err := Validate.RegisterValidation("todo_status", validateTodoStatus); err != nil {
		panic(fmt.Sprintf("failed to register todo_status validator: %v", err))
	}
	if err := Validate.RegisterValidation("mutation_action", validateMutationAction); err != nil {
		panic(fmt.Sprintf("failed to register mutation_action validator: %v", err))
	}
}

func validatePriority(fl validator.FieldLevel) bool {
	_, ok := models.ParsePriority(fl.Field().String())
	return ok
}

func validateTodoStatus(fl validator.FieldLevel) bool {
	return ValidateTodoStatus(fl.Field().String()) == nil
}

func validateMutationAction(fl validator.FieldLevel) bool {
	return ValidateMutationAction(fl.Field().String()) == nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateTodoStatus validates a TodoStatus string value
func ValidateTodoStatus(value string) error {
	switch models.TodoStatus(value) {
	case models.TodoStatusPending, models.TodoStatusInProgress, models.TodoStatusCompleted:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'pending', 'in_progress', or 'completed')", value)
	}
}

// ValidateMutationAction validates a mutation action tag
func ValidateMutationAction(value string) error {
	switch models.MutationAction(value) {
	case models.ActionAdd, models.ActionUpdate, models.ActionComplete, models.ActionDelete:
		return nil
	default:
		return fmt.Errorf("invalid action: %q (must be 'add', 'update', 'complete', or 'delete')", value)
	}
}
