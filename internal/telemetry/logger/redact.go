package logger

import (
	"log/slog"
	"strconv"
	"strings"
)

// payloadKeys name attributes that carry client data. They are masked
// unless Config.LogValues is set.
var payloadKeys = []string{
	"value",
	"result",
}

// Sensitive key patterns that should be redacted regardless of LogValues.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"auth",
	"bearer",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

func isPayloadKey(key string) bool {
	for _, k := range payloadKeys {
		if key == k {
			return true
		}
	}
	return false
}

// maskPayload replaces a stored value with its length, e.g. "<5 bytes>".
func maskPayload(a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindString {
		return a
	}
	return slog.String(a.Key, maskValue(a.Value.String()))
}

// maskValue returns a placeholder describing value without revealing it.
func maskValue(value string) string {
	return "<" + strconv.Itoa(len(value)) + " bytes>"
}

// redactSensitive checks if an attribute contains sensitive data
// and redacts it if necessary.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		if a.Value.String() != "" && isSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// isSensitiveKey checks if a key name suggests sensitive content.
func isSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
