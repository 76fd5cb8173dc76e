package ai

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/benvon/todo-chat/internal/protocol"
	"github.com/benvon/todo-chat/internal/request"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
)

// OpenAIBackend implements CompletionBackend using OpenAI's Chat Completions API
type OpenAIBackend struct {
	client    openai.Client
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIBackend creates a new OpenAI backend
func NewOpenAIBackend(cfg BackendConfig) *OpenAIBackend {
	cfg = cfg.withDefaults(DefaultOpenAIBaseURL, DefaultOpenAIModel)

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(cfg.HTTPClient),
		option.WithMaxRetries(0),
	)

	return &OpenAIBackend{
		client:    client,
		apiKey:    strings.TrimSpace(cfg.APIKey),
		baseURL:   cfg.BaseURL,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    cfg.Logger,
		debugMode: cfg.DebugMode,
	}
}

// Complete sends req and returns the content of the first choice
func (p *OpenAIBackend) Complete(ctx context.Context, req protocol.Request) (string, error) {
	if p.apiKey == "" {
		return "", ErrMissingCredential
	}
	if u, err := url.Parse(p.baseURL); err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrMalformedEndpoint, p.baseURL)
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(req.System),
		openai.UserMessage(req.User),
	}
	params := openai.ChatCompletionNewParams{
		Model:     shared.ChatModel(p.model),
		Messages:  messages,
		MaxTokens: openai.Int(int64(p.maxTokens)),
	}

	requestID := request.RequestIDFromContext(ctx)
	if p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("provider", ProviderOpenAI),
			zap.String("model", p.model),
			zap.Int("message_count", len(messages)),
			zap.String("prompt_preview", SanitizePrompt(req.User, false)),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	latency := time.Since(start)
	if err != nil {
		if p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("provider", ProviderOpenAI),
				zap.String("model", p.model),
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		return "", fromOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrResponseShape)
	}
	content := resp.Choices[0].Message.Content

	if p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("provider", ProviderOpenAI),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return content, nil
}
