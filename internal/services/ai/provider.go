package ai

import (
	"context"
	"net/http"
	"time"

	"github.com/benvon/todo-chat/internal/protocol"
	"go.uber.org/zap"
)

const (
	// ProviderAnthropic selects the Anthropic Messages API backend
	ProviderAnthropic = "anthropic"
	// ProviderOpenAI selects the OpenAI Chat Completions backend
	ProviderOpenAI = "openai"

	// DefaultMaxTokens caps the length of a single completion
	DefaultMaxTokens = 1000
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 60 * time.Second
)

// CompletionBackend sends one completion request and returns the raw reply text.
// It is the only blocking step of a conversation turn.
type CompletionBackend interface {
	Complete(ctx context.Context, req protocol.Request) (string, error)
}

// BackendConfig holds the settings shared by every backend
type BackendConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
	DebugMode  bool
}

func (c BackendConfig) withDefaults(baseURL, model string) BackendConfig {
	if c.BaseURL == "" {
		c.BaseURL = baseURL
	}
	if c.Model == "" {
		c.Model = model
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// BackendFactory creates a backend from configuration
type BackendFactory func(cfg BackendConfig) (CompletionBackend, error)

// BackendRegistry stores available completion backends
type BackendRegistry struct {
	factories map[string]BackendFactory
}

// NewBackendRegistry creates an empty registry
func NewBackendRegistry() *BackendRegistry {
	return &BackendRegistry{
		factories: make(map[string]BackendFactory),
	}
}

// DefaultRegistry returns a registry with the built-in backends registered
func DefaultRegistry() *BackendRegistry {
	r := NewBackendRegistry()
	r.Register(ProviderAnthropic, func(cfg BackendConfig) (CompletionBackend, error) {
		return NewAnthropicBackend(cfg), nil
	})
	r.Register(ProviderOpenAI, func(cfg BackendConfig) (CompletionBackend, error) {
		return NewOpenAIBackend(cfg), nil
	})
	return r
}

// Register registers a backend factory
func (r *BackendRegistry) Register(name string, factory BackendFactory) {
	r.factories[name] = factory
}

// NewBackend creates the backend registered under name
func (r *BackendRegistry) NewBackend(name string, cfg BackendConfig) (CompletionBackend, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return factory(cfg)
}

// ErrProviderNotFound is returned when a provider is not registered
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}
