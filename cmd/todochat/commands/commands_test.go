package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benvon/todo-chat/internal/config"
	"github.com/benvon/todo-chat/internal/conversation"
	"github.com/benvon/todo-chat/internal/services/ai"
	"github.com/benvon/todo-chat/internal/storage"
)

func anthropicServer(t *testing.T, status int, text string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": text}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func loaderFor(dataDir, baseURL string) ConfigLoader {
	return func() (*config.Config, error) {
		return &config.Config{
			AIProvider:     ai.ProviderAnthropic,
			AnthropicKey:   "test-key",
			AIBaseURL:      baseURL,
			AIMaxTokens:    100,
			AITimeout:      5 * time.Second,
			StorageBackend: storage.BackendFile,
			DataDir:        dataDir,
		}, nil
	}
}

func run(loader ConfigLoader, args ...string) (string, error) {
	cmd := NewRootCmd(loader)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands_ChatThenInspect(t *testing.T) {
	t.Parallel()

	reply := "Added it!\nTODO_UPDATES:\n" + `{"updates":[{"action":"add","title":"Buy milk","priority":"high"}]}`
	srv := anthropicServer(t, http.StatusOK, reply)
	loader := loaderFor(t.TempDir(), srv.URL)

	out, err := run(loader, "chat", "Buy", "milk")
	if err != nil {
		t.Fatalf("chat error = %v", err)
	}
	if !strings.Contains(out, "Added it!") || strings.Contains(out, "TODO_UPDATES") {
		t.Errorf("Expected display text only, got %q", out)
	}
	if !strings.Contains(out, "[ ] Buy milk (high)") {
		t.Errorf("Expected updated todo list, got %q", out)
	}

	out, err = run(loader, "todos")
	if err != nil {
		t.Fatalf("todos error = %v", err)
	}
	if !strings.Contains(out, "Buy milk") {
		t.Errorf("Expected persisted todo, got %q", out)
	}

	out, err = run(loader, "messages")
	if err != nil {
		t.Fatalf("messages error = %v", err)
	}
	for _, want := range []string{conversation.WelcomeMessage, "user: Buy milk", "assistant: Added it!"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in message log, got %q", want, out)
		}
	}

	backupDir := t.TempDir()
	out, err = run(loader, "backup", "--dir", backupDir)
	if err != nil {
		t.Fatalf("backup error = %v", err)
	}
	if got := strings.Count(strings.TrimSpace(out), "\n") + 1; got != 2 {
		t.Errorf("Expected 2 backup files, got %q", out)
	}

	if _, err := run(loader, "reset"); err == nil {
		t.Error("Expected reset without --yes to fail")
	}
	if _, err := run(loader, "reset", "--yes"); err != nil {
		t.Fatalf("reset error = %v", err)
	}
	out, err = run(loader, "todos")
	if err != nil {
		t.Fatalf("todos error = %v", err)
	}
	if strings.TrimSpace(out) != "No todos" {
		t.Errorf("Expected empty list after reset, got %q", out)
	}
}

func TestCommands_ChatBackendFailure(t *testing.T) {
	t.Parallel()

	srv := anthropicServer(t, http.StatusServiceUnavailable, "")
	out, err := run(loaderFor(t.TempDir(), srv.URL), "chat", "hello")
	if err == nil {
		t.Fatal("Expected chat to fail")
	}
	if !strings.Contains(out, conversation.ErrorReply) {
		t.Errorf("Expected error reply to be printed, got %q", out)
	}
}

func TestCommands_ChatRequiresText(t *testing.T) {
	t.Parallel()

	if _, err := run(loaderFor(t.TempDir(), "http://127.0.0.1:1"), "chat"); err == nil {
		t.Error("Expected chat without a message to fail")
	}
}
