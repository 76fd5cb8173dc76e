package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	AIProvider      string
	AnthropicKey    string
	OpenAIKey       string
	AIModel         string
	AIBaseURL       string
	AIMaxTokens     int
	AITimeout       time.Duration
	StorageBackend  string
	DataDir         string
	DatabaseURL     string
	RedisURL        string
	RabbitMQURL     string
	ServerPort      string
	FrontendURL     string
	EnableHSTS      bool
	ChatRateLimit   string
	ServerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// APIKey returns the credential for the selected provider
func (c *Config) APIKey() string {
	if c.AIProvider == "openai" {
		return c.OpenAIKey
	}
	return c.AnthropicKey
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom loads configuration using lookup in place of the process environment
func LoadFrom(lookup func(string) string) (*Config, error) {
	e := env(lookup)

	cfg := &Config{
		AIProvider:      strings.ToLower(e.get("AI_PROVIDER", "anthropic")),
		AnthropicKey:    e.get("CLAUDE_API_KEY", ""),
		OpenAIKey:       e.get("OPENAI_API_KEY", ""),
		AIModel:         e.get("AI_MODEL", ""),
		AIBaseURL:       e.get("AI_BASE_URL", ""),
		AIMaxTokens:     e.getInt("AI_MAX_TOKENS", 1000),
		AITimeout:       e.getDuration("AI_TIMEOUT", 60*time.Second),
		StorageBackend:  strings.ToLower(e.get("STORAGE_BACKEND", "file")),
		DataDir:         e.get("DATA_DIR", "data"),
		DatabaseURL:     e.get("DATABASE_URL", ""),
		RedisURL:        e.get("REDIS_URL", ""),
		RabbitMQURL:     e.get("RABBITMQ_URL", ""),
		ServerPort:      e.get("SERVER_PORT", "8080"),
		FrontendURL:     e.get("FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:      e.getBool("ENABLE_HSTS", false),
		ChatRateLimit:   e.get("CHAT_RATE_LIMIT", "20-M"),
		ServerDebugMode: e.getBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:     e.getBool("OTEL_ENABLED", false),
		OTELEndpoint:    e.get("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	switch cfg.AIProvider {
	case "anthropic", "openai":
	default:
		return nil, fmt.Errorf("AI_PROVIDER must be anthropic or openai, got %q", cfg.AIProvider)
	}

	if cfg.AIMaxTokens <= 0 {
		return nil, fmt.Errorf("AI_MAX_TOKENS must be positive")
	}

	switch cfg.StorageBackend {
	case "file":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND is postgres")
		}
	case "redis":
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when STORAGE_BACKEND is redis")
		}
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND must be file, postgres or redis, got %q", cfg.StorageBackend)
	}

	if cfg.OTELEnabled && cfg.OTELEndpoint == "" {
		return nil, fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT is required when OTEL_ENABLED is set")
	}

	return cfg, nil
}

type env func(string) string

func (e env) get(key, defaultValue string) string {
	if value := strings.TrimSpace(e(key)); value != "" {
		return value
	}
	return defaultValue
}

func (e env) getBool(key string, defaultValue bool) bool {
	if value := e(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func (e env) getInt(key string, defaultValue int) int {
	if value := e(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDuration accepts Go durations ("90s") or a bare number of seconds
func (e env) getDuration(key string, defaultValue time.Duration) time.Duration {
	value := e(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
