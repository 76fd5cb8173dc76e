package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/todo-chat/internal/models"
	"github.com/benvon/todo-chat/internal/validation"
	"go.uber.org/zap"
)

// ErrResponseShape is returned when a completion envelope lacks the expected fields
var ErrResponseShape = errors.New("unexpected completion response shape")

// dueDateLayouts are the accepted ISO-8601 forms, most specific first.
// Layouts without an offset are interpreted in the codec's location.
var dueDateLayouts = []struct {
	layout string
	zoned  bool
}{
	{time.RFC3339Nano, true},
	{"2006-01-02T15:04:05.999999999", false},
	{"2006-01-02T15:04", false},
	{"2006-01-02", false},
}

// ParseResponse splits a completion reply into the text shown to the user and the
// mutations it requests. It never fails: a missing delimiter or an undecodable batch
// yields no mutations, and invalid entries or fields are dropped individually.
func (c *Codec) ParseResponse(raw string) (string, []models.Mutation) {
	before, after, found := strings.Cut(raw, Delimiter)
	if !found {
		return strings.TrimSpace(raw), nil
	}

	display := strings.TrimSpace(before)

	entries, err := decodeUpdates(after)
	if err != nil {
		c.logger.Debug("todo_updates_undecodable", zap.Error(err))
		return display, nil
	}

	var mutations []models.Mutation
	for i, entry := range entries {
		m, reason := c.decodeEntry(entry)
		if m == nil {
			c.logger.Debug("todo_update_dropped",
				zap.Int("index", i),
				zap.String("reason", reason),
			)
			continue
		}
		mutations = append(mutations, m)
	}

	if len(mutations) == 0 {
		return display, nil
	}
	return display, mutations
}

// decodeUpdates extracts the updates array from the text after the delimiter
func decodeUpdates(payload string) ([]json.RawMessage, error) {
	payload = stripCodeFence(strings.TrimSpace(payload))

	var doc updatesDocument
	err := json.Unmarshal([]byte(payload), &doc)
	if err == nil {
		return doc.Updates, nil
	}

	// Tolerate prose around the object: take the first value that decodes
	// and carries an updates field, ignoring anything after it.
	decoded := false
	for offset := 0; ; {
		i := strings.IndexByte(payload[offset:], '{')
		if i == -1 {
			break
		}
		start := offset + i
		offset = start + 1

		var candidate updatesDocument
		if json.NewDecoder(strings.NewReader(payload[start:])).Decode(&candidate) != nil {
			continue
		}
		if candidate.Updates != nil {
			return candidate.Updates, nil
		}
		decoded = true
	}
	if decoded {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to decode todo updates: %w", err)
}

type updatesDocument struct {
	Updates []json.RawMessage `json:"updates"`
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.Index(s, "\n"); nl != -1 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// decodeEntry converts one raw update into a mutation, or returns nil and the reason it was dropped
func (c *Codec) decodeEntry(raw json.RawMessage) (models.Mutation, string) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, "entry is not an object"
	}

	action := strings.ToLower(stringField(fields, "action"))
	if err := validation.Validate.Var(action, "required,mutation_action"); err != nil {
		return nil, "missing or unknown action"
	}

	todoID := stringField(fields, "todoId")
	if todoID == "" {
		todoID = stringField(fields, "todo_id")
	}

	switch models.MutationAction(action) {
	case models.ActionAdd:
		return models.AddMutation{TodoFields: c.decodeFields(fields)}, ""
	case models.ActionUpdate:
		return models.UpdateMutation{TodoID: todoID, TodoFields: c.decodeFields(fields)}, ""
	case models.ActionComplete:
		return models.CompleteMutation{TodoID: todoID}, ""
	case models.ActionDelete:
		return models.DeleteMutation{TodoID: todoID}, ""
	}
	return nil, "missing or unknown action"
}

func (c *Codec) decodeFields(fields map[string]json.RawMessage) models.TodoFields {
	var out models.TodoFields

	if title := stringField(fields, "title"); title != "" {
		out.Title = &title
	}
	if description := stringField(fields, "description"); description != "" {
		out.Description = &description
	}
	if p := stringField(fields, "priority"); p != "" {
		if validation.Validate.Var(p, "priority") == nil {
			priority, _ := models.ParsePriority(p)
			out.Priority = &priority
		}
	}
	if d := stringField(fields, "dueDate"); d != "" {
		if due, ok := c.parseDueDate(d); ok {
			out.DueDate = &due
		}
	}

	return out
}

func (c *Codec) parseDueDate(value string) (time.Time, bool) {
	for _, candidate := range dueDateLayouts {
		var (
			t   time.Time
			err error
		)
		if candidate.zoned {
			t, err = time.Parse(candidate.layout, value)
		} else {
			t, err = time.ParseInLocation(candidate.layout, value, c.location)
		}
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// stringField returns the trimmed string value of key, or "" when it is absent,
// null, or not a JSON string
func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// ExtractEnvelopeText returns the first text segment of a Messages API result envelope
func ExtractEnvelopeText(body []byte) (string, error) {
	var envelope struct {
		Content []struct {
			Type string  `json:"type"`
			Text *string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("%w: %v", ErrResponseShape, err)
	}
	if len(envelope.Content) == 0 {
		return "", fmt.Errorf("%w: empty content", ErrResponseShape)
	}
	for _, segment := range envelope.Content {
		if segment.Text != nil && (segment.Type == "" || segment.Type == "text") {
			return *segment.Text, nil
		}
	}
	return "", fmt.Errorf("%w: no text segment", ErrResponseShape)
}
