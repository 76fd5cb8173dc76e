package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/todo-chat/internal/dates"
	"github.com/benvon/todo-chat/internal/models"
)

const (
	// Delimiter separates the conversational reply from the JSON mutation batch
	Delimiter = "TODO_UPDATES:"
	// DateAnnotationHeader introduces the resolved date lines appended to the user content
	DateAnnotationHeader = "Detected date references:"
	// AnnotationTimeFormat is the timestamp format used in date annotations
	AnnotationTimeFormat = time.RFC3339
)

// Request is the provider-neutral completion request
type Request struct {
	// System holds the grammar instructions and the current todo snapshot
	System string
	// User holds the original user text followed by any date annotations
	User string
}

const grammarInstructions = `You are a helpful todo assistant. You help users manage their todos through natural conversation.

When responding:
1. Be conversational and helpful.
2. If the user wants to add, update, complete, or delete todos, include the JSON block described below.
3. Always write your plain-text reply first, followed by the JSON block only when todo updates are needed.
4. Use this exact format for todo updates:

RESPONSE_TEXT

TODO_UPDATES:
{
    "updates": [
        {
            "action": "add|update|complete|delete",
            "todoId": "id of an existing todo, required for update, complete and delete",
            "title": "todo title",
            "description": "optional description",
            "priority": "low|medium|high|urgent",
            "dueDate": "ISO8601 timestamp if applicable"
        }
    ]
}

Only use todoId values that appear in the current todo list. Never invent an id for a new todo.
When the user message lists detected date references, use those dates instead of computing your own.
Keep responses natural and conversational. Help prioritize and organize tasks thoughtfully.`

// BuildRequest assembles the completion request for one turn.
// ref is the reference instant for resolving date phrases in userText.
func (c *Codec) BuildRequest(userText string, todos []models.Todo, ref time.Time) Request {
	var system strings.Builder
	system.WriteString(grammarInstructions)
	system.WriteString("\n\nCurrent todos (JSON format):\n")
	system.WriteString(c.SnapshotJSON(todos))

	return Request{
		System: system.String(),
		User:   AnnotateDates(userText, ref),
	}
}

// SnapshotJSON renders the todo collection as indented JSON with stable field ordering.
// An empty collection renders as [].
func (c *Codec) SnapshotJSON(todos []models.Todo) string {
	if len(todos) == 0 {
		return "[]"
	}
	data, err := json.MarshalIndent(todos, "", "  ")
	if err != nil {
		c.logger.Warn("todo_snapshot_encode_failed")
		return "[]"
	}
	return string(data)
}

// AnnotateDates appends one line per resolvable date phrase in text.
// Phrases that do not resolve are left out; text is returned unchanged when none resolve.
func AnnotateDates(text string, ref time.Time) string {
	var lines []string
	for _, phrase := range dates.ExtractPhrases(text) {
		resolved, ok := dates.Resolve(phrase, ref)
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("- '%s' = %s", phrase, resolved.Format(AnnotationTimeFormat)))
	}

	if len(lines) == 0 {
		return text
	}
	return text + "\n\n" + DateAnnotationHeader + "\n" + strings.Join(lines, "\n")
}
