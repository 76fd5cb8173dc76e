// Package app assembles the conversation and its dependencies from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/todo-chat/internal/clock"
	"github.com/benvon/todo-chat/internal/config"
	"github.com/benvon/todo-chat/internal/conversation"
	"github.com/benvon/todo-chat/internal/events"
	"github.com/benvon/todo-chat/internal/services/ai"
	"github.com/benvon/todo-chat/internal/storage"
	"go.uber.org/zap"
)

const (
	rabbitMQMaxRetries   = 10
	rabbitMQInitialDelay = 2 * time.Second
)

// App holds the long-lived pieces shared by the server and the CLI
type App struct {
	Config       *config.Config
	Store        storage.Store
	Publisher    events.Publisher
	Backend      ai.CompletionBackend
	Conversation *conversation.Conversation

	logger *zap.Logger
}

// Options tunes how Build connects to external services
type Options struct {
	// RabbitMQRetries overrides the connection attempts made when RABBITMQ_URL is set
	RabbitMQRetries int
	// DebugMode logs sanitized completion requests and responses
	DebugMode bool
}

// Build opens the store, the event publisher and the completion backend, then loads
// the conversation. Close releases everything Build opened.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	a := &App{Config: cfg, logger: logger}

	store, err := storage.Open(ctx, storage.Options{
		Backend:     cfg.StorageBackend,
		DataDir:     cfg.DataDir,
		DatabaseURL: cfg.DatabaseURL,
		RedisURL:    cfg.RedisURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.StorageBackend, err)
	}
	a.Store = store
	logger.Info("storage_opened", zap.String("backend", cfg.StorageBackend))

	a.Publisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		retries := opts.RabbitMQRetries
		if retries <= 0 {
			retries = rabbitMQMaxRetries
		}
		publisher, err := events.ConnectWithRetry(ctx, cfg.RabbitMQURL, retries, rabbitMQInitialDelay, logger)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		a.Publisher = publisher
	}

	backend, err := ai.DefaultRegistry().NewBackend(cfg.AIProvider, ai.BackendConfig{
		APIKey:    cfg.APIKey(),
		BaseURL:   cfg.AIBaseURL,
		Model:     cfg.AIModel,
		MaxTokens: cfg.AIMaxTokens,
		Timeout:   cfg.AITimeout,
		Logger:    logger,
		DebugMode: opts.DebugMode,
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to create completion backend: %w", err)
	}
	a.Backend = backend
	if cfg.APIKey() == "" {
		// Turns still run and report the missing key as a failed reply
		logger.Warn("ai_api_key_not_configured", zap.String("provider", cfg.AIProvider))
	}

	a.Conversation = conversation.New(conversation.Dependencies{
		Backend:   backend,
		Store:     store,
		Clock:     clock.System{},
		Publisher: a.Publisher,
		Logger:    logger,
	})
	a.Conversation.Load(ctx)

	return a, nil
}

// Close releases the publisher and the store
func (a *App) Close() error {
	var errs []error
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close publisher: %w", err))
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close store: %w", err))
		}
	}
	return errors.Join(errs...)
}
