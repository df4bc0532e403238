package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("no log output")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, line)
	}
	return m
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelInfo, Output: &buf, Service: "wisechat-test"})

	l.WithField("chat_id", 7).
		WithError(errors.New("boom")).
		WithDuration(1500*time.Microsecond).
		Warn("[Test] failed after %d tries", 3)

	m := decodeLine(t, &buf)
	if m["level"] != "warn" {
		t.Errorf("level = %v, want warn", m["level"])
	}
	if m["message"] != "[Test] failed after 3 tries" {
		t.Errorf("message = %v", m["message"])
	}
	if m["service"] != "wisechat-test" {
		t.Errorf("service = %v", m["service"])
	}
	if m["chat_id"] != float64(7) {
		t.Errorf("chat_id = %v, want 7", m["chat_id"])
	}
	if m["error"] != "boom" {
		t.Errorf("error = %v, want boom", m["error"])
	}
	if m["duration_ms"] != 1.5 {
		t.Errorf("duration_ms = %v, want 1.5", m["duration_ms"])
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf})

	l.Info("hidden")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output below warn, got %q", buf.String())
	}

	l.Error("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected error line, got %q", buf.String())
	}
}

func TestLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf})

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithUserID(ctx, "user-9")
	l.WithContext(ctx).Info("hello")

	m := decodeLine(t, &buf)
	if m["request_id"] != "req-1" {
		t.Errorf("request_id = %v", m["request_id"])
	}
	if m["user_id"] != "user-9" {
		t.Errorf("user_id = %v", m["user_id"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"WARN", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
