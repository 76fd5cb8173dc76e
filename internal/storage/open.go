package storage

import (
	"context"
	"fmt"
)

// Storage backend names
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Options selects and configures a backend
type Options struct {
	Backend     string
	DataDir     string
	DatabaseURL string
	RedisURL    string
	RedisPrefix string
}

// Open creates the store named by opts.Backend. An empty backend means file.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.DataDir)
	case BackendPostgres:
		return OpenPostgres(ctx, opts.DatabaseURL)
	case BackendRedis:
		return OpenRedis(ctx, opts.RedisURL, opts.RedisPrefix)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
