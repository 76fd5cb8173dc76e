package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/benvon/todo-chat/internal/logger"
	"github.com/benvon/todo-chat/internal/protocol"
	"github.com/openai/openai-go/v3"
)

var (
	// ErrMissingCredential indicates no API key was configured. Detected before any network call.
	ErrMissingCredential = errors.New("missing API credential")
	// ErrMalformedEndpoint indicates the configured base URL cannot be used
	ErrMalformedEndpoint = errors.New("malformed API endpoint")
	// ErrTransport wraps network failures and timeouts
	ErrTransport = errors.New("completion transport failure")
	// ErrRequestEncoding indicates the request body could not be encoded
	ErrRequestEncoding = errors.New("failed to encode completion request")
	// ErrResponseShape indicates the reply envelope did not have the expected fields
	ErrResponseShape = protocol.ErrResponseShape
)

// maxErrorBodyLength bounds the response body kept on a StatusError
const maxErrorBodyLength = 512

// StatusError is returned when the API answers with a non-success status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

func newStatusError(code int, body string) *StatusError {
	return &StatusError{
		StatusCode: code,
		Body:       logger.SanitizeString(body, maxErrorBodyLength),
	}
}

// IsConfigurationError reports whether err stems from local configuration
func IsConfigurationError(err error) bool {
	if err == nil {
		return false
	}
	var notFound *ErrProviderNotFound
	return errors.Is(err, ErrMissingCredential) ||
		errors.Is(err, ErrMalformedEndpoint) ||
		errors.As(err, &notFound)
}

// IsTransportError reports whether err is a network failure, timeout, or non-success status
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransport) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsProtocolError reports whether err is an encoding or response shape failure
func IsProtocolError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrRequestEncoding) || errors.Is(err, ErrResponseShape)
}

// IsRateLimitError checks if an error is a rate limit error
func IsRateLimitError(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// fromOpenAIError maps SDK errors onto the package's failure classes
func fromOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return newStatusError(apiErr.StatusCode, apiErr.Message)
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}
