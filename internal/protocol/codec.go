// Package protocol encodes completion requests and decodes the hybrid text+JSON replies
// that carry todo mutations.
package protocol

import (
	"time"

	"go.uber.org/zap"
)

// Codec builds completion requests and parses completion replies
type Codec struct {
	location *time.Location
	logger   *zap.Logger
}

// Option configures a Codec
type Option func(*Codec)

// WithLocation sets the location used for due dates that carry no zone offset
func WithLocation(loc *time.Location) Option {
	return func(c *Codec) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithLogger sets the logger used to report dropped entries
func WithLogger(logger *zap.Logger) Option {
	return func(c *Codec) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCodec creates a codec. Zone-less due dates default to UTC.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{
		location: time.UTC,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
