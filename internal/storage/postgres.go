package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/todo-chat/internal/models"
	"github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS todo_chat_documents (
	name       TEXT PRIMARY KEY,
	document   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresStore keeps each document as one JSONB row
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects to databaseURL, verifies the connection and ensures the schema exists
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := NewPostgresStore(db)
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStore wraps an existing connection pool
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the documents table if it does not exist
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	return nil
}

// LoadMessages reads the messages row
func (s *PostgresStore) LoadMessages(ctx context.Context) ([]models.Message, error) {
	return load[models.Message](ctx, s, DocumentMessages)
}

// SaveMessages upserts the messages row
func (s *PostgresStore) SaveMessages(ctx context.Context, messages []models.Message) error {
	return save(ctx, s, DocumentMessages, messages)
}

// LoadTodos reads the todos row
func (s *PostgresStore) LoadTodos(ctx context.Context) ([]models.Todo, error) {
	return load[models.Todo](ctx, s, DocumentTodos)
}

// SaveTodos upserts the todos row
func (s *PostgresStore) SaveTodos(ctx context.Context, todos []models.Todo) error {
	return save(ctx, s, DocumentTodos, todos)
}

// ReadDocument returns the raw document, or nil when no row exists
func (s *PostgresStore) ReadDocument(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT document FROM todo_chat_documents WHERE name = $1
	`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s document: %w", name, err)
	}
	return data, nil
}

func (s *PostgresStore) writeDocument(ctx context.Context, name string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO todo_chat_documents (name, document, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at
	`, name, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set %s document: %w", name, err)
	}
	return nil
}

// Clear deletes both rows
func (s *PostgresStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM todo_chat_documents WHERE name = ANY($1)
	`, pq.Array(Documents))
	if err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	return nil
}

// Ping checks the database connection
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
