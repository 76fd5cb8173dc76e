package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/benvon/todo-chat/internal/protocol"
	"github.com/benvon/todo-chat/internal/request"
	"go.uber.org/zap"
)

const (
	// DefaultAnthropicModel is the default model to use
	DefaultAnthropicModel = "claude-3-sonnet-20240229"
	// DefaultAnthropicBaseURL is the default Anthropic API base URL
	DefaultAnthropicBaseURL = "https://api.anthropic.com"
)

// AnthropicBackend implements CompletionBackend using the Anthropic Messages API
type AnthropicBackend struct {
	client    anthropic.Client
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	logger    *zap.Logger
	debugMode bool
}

// NewAnthropicBackend creates a new Anthropic backend. A missing API key is reported on
// the first Complete call, before any network traffic.
func NewAnthropicBackend(cfg BackendConfig) *AnthropicBackend {
	cfg = cfg.withDefaults(DefaultAnthropicBaseURL, DefaultAnthropicModel)
	apiKey := strings.TrimSpace(cfg.APIKey)

	// One attempt per turn
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(strings.TrimSpace(cfg.BaseURL)),
		option.WithHTTPClient(cfg.HTTPClient),
		option.WithMaxRetries(0),
	)

	return &AnthropicBackend{
		client:    client,
		apiKey:    apiKey,
		baseURL:   cfg.BaseURL,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    cfg.Logger,
		debugMode: cfg.DebugMode,
	}
}

// Complete sends req and returns the first text segment of the reply
func (b *AnthropicBackend) Complete(ctx context.Context, req protocol.Request) (string, error) {
	if b.apiKey == "" {
		return "", ErrMissingCredential
	}
	if err := validateBaseURL(b.baseURL); err != nil {
		return "", err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(b.model),
		MaxTokens: int64(b.maxTokens),
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: req.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	}

	requestID := request.RequestIDFromContext(ctx)
	if b.debugMode {
		b.logger.Debug("llm_api_request",
			zap.String("provider", ProviderAnthropic),
			zap.String("model", b.model),
			zap.String("api_key", SanitizeAPIKey(b.apiKey)),
			zap.Int("prompt_length", len(req.System)+len(req.User)),
			zap.String("prompt_preview", SanitizePrompt(req.User, false)),
			zap.String("request_id", requestID),
		)
	}

	// The raw envelope is kept so shape violations surface as ErrResponseShape
	var (
		envelope []byte
		httpResp *http.Response
	)
	start := time.Now()
	_, err := b.client.Messages.New(ctx, params,
		option.WithResponseBodyInto(&envelope),
		option.WithResponseInto(&httpResp),
	)
	latency := time.Since(start)
	if err != nil {
		err = fromAnthropicError(err, httpResp)
		b.logFailure(err, requestID, latency)
		return "", err
	}

	text, err := protocol.ExtractEnvelopeText(envelope)
	if err != nil {
		b.logFailure(err, requestID, latency)
		return "", err
	}

	if b.debugMode {
		b.logger.Debug("llm_api_response",
			zap.String("provider", ProviderAnthropic),
			zap.String("model", b.model),
			zap.Int("response_length", len(text)),
			zap.String("response_preview", SanitizeResponse(text, true)),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return text, nil
}

func (b *AnthropicBackend) logFailure(err error, requestID string, latency time.Duration) {
	if !b.debugMode {
		return
	}
	b.logger.Debug("llm_api_error",
		zap.String("provider", ProviderAnthropic),
		zap.String("model", b.model),
		zap.Error(err),
		zap.String("request_id", requestID),
		zap.Int64("latency_ms", latency.Milliseconds()),
	)
}

// fromAnthropicError maps SDK errors onto the package's failure classes. A non-success
// answer whose body the SDK could not decode still becomes a StatusError.
func fromAnthropicError(err error, resp *http.Response) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return newStatusError(apiErr.StatusCode, apiErr.RawJSON())
	}
	if resp != nil && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		return newStatusError(resp.StatusCode, "")
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}

// validateBaseURL rejects base URLs the client cannot send to
func validateBaseURL(base string) error {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrMalformedEndpoint, base)
	}
	return nil
}
