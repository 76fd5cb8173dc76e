// Package storage persists the message log and todo collection as two JSON documents.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/benvon/todo-chat/internal/models"
	"github.com/benvon/todo-chat/internal/validation"
)

const (
	// DocumentMessages names the message log document
	DocumentMessages = "messages"
	// DocumentTodos names the todo collection document
	DocumentTodos = "todos"
)

// Documents lists every document a store holds
var Documents = []string{DocumentMessages, DocumentTodos}

// ErrCorruptDocument is returned when a stored document cannot be decoded
// or holds an entry with an unknown enum value
var ErrCorruptDocument = errors.New("corrupt document")

// Store persists whole snapshots of the message log and todo collection.
// A missing document loads as an empty collection without error. Saves overwrite.
type Store interface {
	LoadMessages(ctx context.Context) ([]models.Message, error)
	SaveMessages(ctx context.Context, messages []models.Message) error
	LoadTodos(ctx context.Context) ([]models.Todo, error)
	SaveTodos(ctx context.Context, todos []models.Todo) error
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// DocumentReader is implemented by stores that expose a document's raw bytes
type DocumentReader interface {
	ReadDocument(ctx context.Context, name string) ([]byte, error)
}

// documentBackend is the raw read/write pair each store implements
type documentBackend interface {
	DocumentReader
	writeDocument(ctx context.Context, name string, data []byte) error
}

func load[T any](ctx context.Context, b documentBackend, name string) ([]T, error) {
	data, err := b.ReadDocument(ctx, name)
	if err != nil {
		return nil, err
	}
	return decodeDocument[T](name, data)
}

func save[T any](ctx context.Context, b documentBackend, name string, items []T) error {
	data, err := encodeDocument(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return b.writeDocument(ctx, name, data)
}

// encodeDocument renders a collection as an indented JSON array. Nil encodes as [].
func encodeDocument[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.MarshalIndent(items, "", "  ")
}

func decodeDocument[T any](name string, data []byte) ([]T, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptDocument, name, err)
	}
	for i := range items {
		if err := validation.Validate.Struct(items[i]); err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", ErrCorruptDocument, name, i, err)
		}
	}
	return items, nil
}
