package logger

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		maxLength int
		want      string
	}{
		{"empty", "", 10, ""},
		{"plain", "hello", 10, "hello"},
		{"control characters removed", "a\x00b\x1bc", 10, "abc"},
		{"whitespace kept", "a\tb\nc", 10, "a\tb\nc"},
		{"truncated", "abcdefghij", 4, "abcd..."},
		{"invalid utf8 dropped", "ok\xff", 10, "ok"},
		{"rune boundary respected", "héllo", 2, "h..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeString(tt.input, tt.maxLength); got != tt.want {
				t.Errorf("SanitizeString(%q, %d) = %q, want %q", tt.input, tt.maxLength, got, tt.want)
			}
		})
	}
}

func TestSanitizePath(t *testing.T) {
	t.Parallel()

	long := "/" + strings.Repeat("a", MaxPathLength+10)
	if got := SanitizePath(long); len(got) != MaxPathLength+len("...") {
		t.Errorf("Expected path truncated to %d bytes, got %d", MaxPathLength, len(got))
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	if SanitizeError(nil) != "" {
		t.Error("Expected empty string for nil error")
	}
	if got := SanitizeError(errors.New("bad\x07 thing")); got != "bad thing" {
		t.Errorf("SanitizeError() = %q", got)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, dev := range []bool{false, true} {
		log, err := New(true, dev)
		if err != nil {
			t.Fatalf("New(true, %v) error = %v", dev, err)
		}
		if !log.Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("Expected debug level enabled for development=%v", dev)
		}
	}

	log, err := NewCLILogger(false)
	if err != nil {
		t.Fatalf("NewCLILogger() error = %v", err)
	}
	if log.Core().Enabled(zapcore.InfoLevel) {
		t.Error("Expected CLI logger to suppress info level")
	}
}
