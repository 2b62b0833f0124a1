package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestSetup(t *testing.T) {
	// Reset logger for testing
	logger = nil
	once = *new(sync.Once)

	Setup("DEBUG", "json")
	if logger == nil {
		t.Fatal("Logger should not be nil")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelWarn},
		{"", slog.LevelWarn},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetupWriterFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(&buf, "warn", "json")

	Get().Info("dropped")
	Get().Warn("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"msg":"kept"`) {
		t.Errorf("Unexpected log line: %s", lines[0])
	}
}

func TestSetupWriterTextFormat(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(&buf, "info", "text")

	Get().Info("hello", "lang", "less")

	out := buf.String()
	if !strings.Contains(out, "msg=hello") || !strings.Contains(out, "lang=less") {
		t.Errorf("Expected text handler output, got %q", out)
	}
}

func TestContextHelpers(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, nil)
	l := slog.New(h)

	// Inject this logger as the global logger for the test
	logger = l

	l2 := WithComponent("test-comp")
	l2.Info("hello")

	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}

	if out["component"] != "test-comp" {
		t.Errorf("Expected component 'test-comp', got %v", out["component"])
	}
	if out["msg"] != "hello" {
		t.Errorf("Expected msg 'hello', got %v", out["msg"])
	}
}

func TestWithRequest(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, nil)
	logger = slog.New(h)

	l2 := WithRequest("req-123")
	l2.Info("request msg")

	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}

	if out["request_id"] != "req-123" {
		t.Errorf("Expected request_id 'req-123', got %v", out["request_id"])
	}
}

func TestGetBeforeSetupKeepsSetupAvailable(t *testing.T) {
	logger = nil
	once = *new(sync.Once)

	if Get() == nil {
		t.Fatal("Get() should return a fallback logger")
	}
	if logger != nil {
		t.Fatal("fallback logger must not be installed globally")
	}

	Setup("DEBUG", "text")
	if logger == nil || !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("Setup after Get should install the configured level")
	}
}
