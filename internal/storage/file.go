package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/benvon/todo-chat/internal/models"
)

// DefaultDataDir is used when no data directory is configured
const DefaultDataDir = "data"

// FileStore keeps each document as <name>.json inside a directory
type FileStore struct {
	dir string
	mu  sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates the data directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = DefaultDataDir
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the data directory
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// LoadMessages reads messages.json
func (s *FileStore) LoadMessages(ctx context.Context) ([]models.Message, error) {
	return load[models.Message](ctx, s, DocumentMessages)
}

// SaveMessages overwrites messages.json
func (s *FileStore) SaveMessages(ctx context.Context, messages []models.Message) error {
	return save(ctx, s, DocumentMessages, messages)
}

// LoadTodos reads todos.json
func (s *FileStore) LoadTodos(ctx context.Context) ([]models.Todo, error) {
	return load[models.Todo](ctx, s, DocumentTodos)
}

// SaveTodos overwrites todos.json
func (s *FileStore) SaveTodos(ctx context.Context, todos []models.Todo) error {
	return save(ctx, s, DocumentTodos, todos)
}

// ReadDocument returns the raw document, or nil when the file does not exist
func (s *FileStore) ReadDocument(_ context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// writeDocument replaces the file atomically via a temp file and rename
func (s *FileStore) writeDocument(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, s.path(name)); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

// Clear removes both documents. Missing files are not an error.
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, name := range Documents {
		if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Ping checks that the data directory is still reachable
func (s *FileStore) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("stat data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data dir %s is not a directory", s.dir)
	}
	return nil
}

// Close is a no-op
func (s *FileStore) Close() error {
	return nil
}
