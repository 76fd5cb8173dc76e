package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIBackend_Complete(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1704067200,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Sure!"}}]
		}`))
	}))
	defer server.Close()

	backend := NewOpenAIBackend(BackendConfig{APIKey: "sk-test-key", BaseURL: server.URL, MaxTokens: 321})
	got, err := backend.Complete(context.Background(), testRequest)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "Sure!" {
		t.Errorf("Complete() = %q, want %q", got, "Sure!")
	}

	if captured["model"] != DefaultOpenAIModel {
		t.Errorf("model = %v, want %s", captured["model"], DefaultOpenAIModel)
	}
	if captured["max_tokens"] != float64(321) {
		t.Errorf("max_tokens = %v, want 321", captured["max_tokens"])
	}
	messages, ok := captured["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("Expected system and user messages, got %v", captured["messages"])
	}
	if first, _ := messages[0].(map[string]any); first["role"] != "system" {
		t.Errorf("Expected first message to be system, got %v", first)
	}
}

func TestOpenAIBackend_NoChoices(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"m","choices":[]}`))
	}))
	defer server.Close()

	backend := NewOpenAIBackend(BackendConfig{APIKey: "sk-test-key", BaseURL: server.URL})
	_, err := backend.Complete(context.Background(), testRequest)
	if !errors.Is(err, ErrResponseShape) {
		t.Fatalf("Expected ErrResponseShape, got %v", err)
	}
}

func TestOpenAIBackend_StatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"rate_limit_error","code":"rate_limit"}}`))
	}))
	defer server.Close()

	backend := NewOpenAIBackend(BackendConfig{APIKey: "sk-test-key", BaseURL: server.URL})
	_, err := backend.Complete(context.Background(), testRequest)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected *StatusError, got %T: %v", err, err)
	}
	if !IsRateLimitError(err) || !IsTransportError(err) {
		t.Errorf("Expected a rate limited transport error, got %v", err)
	}
}

func TestOpenAIBackend_MissingCredential(t *testing.T) {
	t.Parallel()

	backend := NewOpenAIBackend(BackendConfig{BaseURL: "http://127.0.0.1:1"})
	_, err := backend.Complete(context.Background(), testRequest)
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("Expected ErrMissingCredential, got %v", err)
	}
}
