package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func newJSONLogger(t *testing.T, buf *bytes.Buffer) Logger {
	t.Helper()
	l, err := New(Config{Level: "info", Format: "json", Output: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l
}

func TestWithLogger_FromContext(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(t, &buf)

	ctx := WithLogger(context.Background(), l)

	retrieved := FromContext(ctx)
	if retrieved == nil {
		t.Fatal("FromContext returned nil")
	}

	retrieved.Info("test message")

	if buf.Len() == 0 {
		t.Error("Logger from context should produce output")
	}
}

func TestFromContext_Default(t *testing.T) {
	if l := FromContext(context.Background()); l == nil {
		t.Error("FromContext should return default logger, got nil")
	}
}

func TestContextIDs(t *testing.T) {
	ctx := context.Background()
	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("RequestIDFromContext() = %q, want empty string", got)
	}
	if got := sessionIDFromContext(ctx); got != "" {
		t.Errorf("sessionIDFromContext() = %q, want empty string", got)
	}

	ctx = WithRequestID(ctx, "req-123")
	ctx = WithSessionID(ctx, "kvss-01")

	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("RequestIDFromContext() = %q, want %q", got, "req-123")
	}
	if got := sessionIDFromContext(ctx); got != "kvss-01" {
		t.Errorf("sessionIDFromContext() = %q, want %q", got, "kvss-01")
	}
}

func TestL(t *testing.T) {
	tests := []struct {
		name      string
		requestID string
		sessionID string
	}{
		{name: "no ids"},
		{name: "request id", requestID: "req-12345"},
		{name: "session id", sessionID: "kvss-01jbz"},
		{name: "both", requestID: "req-12345", sessionID: "kvss-01jbz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := WithLogger(context.Background(), newJSONLogger(t, &buf))
			if tt.requestID != "" {
				ctx = WithRequestID(ctx, tt.requestID)
			}
			if tt.sessionID != "" {
				ctx = WithSessionID(ctx, tt.sessionID)
			}

			L(ctx).Info("test message")

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("Failed to parse JSON log: %v", err)
			}

			checkAttr(t, entry, "request_id", tt.requestID)
			checkAttr(t, entry, "session", tt.sessionID)
		})
	}
}

func checkAttr(t *testing.T, entry map[string]any, key, want string) {
	t.Helper()
	got, ok := entry[key]
	if want == "" {
		if ok {
			t.Errorf("unexpected %s=%v", key, got)
		}
		return
	}
	if got != want {
		t.Errorf("%s = %v, want %q", key, got, want)
	}
}
