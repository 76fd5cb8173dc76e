package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/benvon/todo-chat/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces document keys
const DefaultRedisPrefix = "todo-chat:"

// RedisStore keeps each document under <prefix><name>
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ Store = (*RedisStore)(nil)

// OpenRedis parses redisURL, connects and verifies the connection
func OpenRedis(ctx context.Context, redisURL, prefix string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStore(client, prefix), nil
}

// NewRedisStore wraps an existing client
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Client returns the underlying Redis client
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

// LoadMessages reads the messages key
func (s *RedisStore) LoadMessages(ctx context.Context) ([]models.Message, error) {
	return load[models.Message](ctx, s, DocumentMessages)
}

// SaveMessages overwrites the messages key
func (s *RedisStore) SaveMessages(ctx context.Context, messages []models.Message) error {
	return save(ctx, s, DocumentMessages, messages)
}

// LoadTodos reads the todos key
func (s *RedisStore) LoadTodos(ctx context.Context) ([]models.Todo, error) {
	return load[models.Todo](ctx, s, DocumentTodos)
}

// SaveTodos overwrites the todos key
func (s *RedisStore) SaveTodos(ctx context.Context, todos []models.Todo) error {
	return save(ctx, s, DocumentTodos, todos)
}

// ReadDocument returns the raw document, or nil when the key does not exist
func (s *RedisStore) ReadDocument(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s document: %w", name, err)
	}
	return data, nil
}

func (s *RedisStore) writeDocument(ctx context.Context, name string, data []byte) error {
	if err := s.client.Set(ctx, s.key(name), data, 0).Err(); err != nil {
		return fmt.Errorf("set %s document: %w", name, err)
	}
	return nil
}

// Clear deletes both keys
func (s *RedisStore) Clear(ctx context.Context) error {
	keys := make([]string, 0, len(Documents))
	for _, name := range Documents {
		keys = append(keys, s.key(name))
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	return nil
}

// Ping checks the Redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
