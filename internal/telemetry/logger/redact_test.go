package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func logOne(t *testing.T, cfg Config, args ...any) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	cfg.Output = &buf
	cfg.Format = "json"
	if cfg.Level == "" {
		cfg.Level = "info"
	}

	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.Info("entry", args...)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	return entry
}

func TestPayloadMasking(t *testing.T) {
	tests := []struct {
		name      string
		logValues bool
		attr      string
		value     string
		want      string
	}{
		{"value masked", false, "value", "hello", "<5 bytes>"},
		{"result masked", false, "result", "abc", "<3 bytes>"},
		{"value shown", true, "value", "hello", "hello"},
		{"result shown", true, "result", "abc", "abc"},
		{"key kept", false, "key", "user:1", "user:1"},
		{"verb kept", false, "verb", "PUT", "PUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := logOne(t, Config{LogValues: tt.logValues}, tt.attr, tt.value)
			if got := entry[tt.attr]; got != tt.want {
				t.Errorf("%s = %v, want %q", tt.attr, got, tt.want)
			}
		})
	}
}

func TestRedactSensitive_KeyPatterns(t *testing.T) {
	tests := []struct {
		key      string
		value    string
		redacted bool
	}{
		{"password", "hunter2", true},
		{"api_secret", "s3cr3t", true},
		{"auth_header", "Basic xyz", true},
		{"bearer", "abc", true},
		{"password", "", false},
		{"addr", "127.0.0.1:8893", false},
		{"session", "kvss-01jbz", false},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			// LogValues does not affect secret redaction.
			entry := logOne(t, Config{LogValues: true}, tt.key, tt.value)
			got := entry[tt.key]
			if tt.redacted && got != redactedValue {
				t.Errorf("%s = %v, want redacted", tt.key, got)
			}
			if !tt.redacted && got != tt.value {
				t.Errorf("%s = %v, want %q", tt.key, got, tt.value)
			}
		})
	}
}

func TestRedactSensitive_Group(t *testing.T) {
	entry := logOne(t, Config{}, slog.Group("client", slog.String("token", "abc"), slog.String("name", "cli")))

	group, ok := entry["client"].(map[string]any)
	if !ok {
		t.Fatalf("client group missing: %v", entry)
	}
	if group["token"] != redactedValue {
		t.Errorf("client.token = %v, want redacted", group["token"])
	}
	if group["name"] != "cli" {
		t.Errorf("client.name = %v, want cli", group["name"])
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"password", true},
		{"Auth_Token", true},
		{"credentials", true},
		{"key", false},
		{"value", false},
		{"level", false},
	}

	for _, tt := range tests {
		if got := isSensitiveKey(tt.key); got != tt.want {
			t.Errorf("isSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestMaskValue(t *testing.T) {
	if got := maskValue(""); got != "<0 bytes>" {
		t.Errorf("maskValue(\"\") = %q", got)
	}
	if got := maskValue("héllo"); got != "<6 bytes>" {
		t.Errorf("maskValue(héllo) = %q", got)
	}
}
