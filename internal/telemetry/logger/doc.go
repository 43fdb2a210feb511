// Package logger provides structured logging for StackKV.
//
// This package wraps the standard library log/slog:
//
//   - logger.go: Logger configuration and initialization
//   - context.go: Context-aware logging with session IDs
//   - redact.go: Payload and secret redaction
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering, adjustable at runtime
//   - Stored values are masked unless explicitly enabled
//   - Context propagation of the acting session
package logger
