// Package logger provides structured logging for StackKV.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the application logger interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
	// Slog returns the underlying *slog.Logger for components that take one.
	Slog() *slog.Logger
}

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level: debug, info, warn (or warning), error.
	Level string
	// Format is json, text or console. Unknown formats use json.
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
	// AddSource adds source file information to log entries.
	AddSource bool
	// LogValues disables masking of stored values ("value", "result").
	LogValues bool
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "json",
		Output: os.Stderr,
	}
}

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// level is shared by every handler this package builds so SetLevel takes
// effect everywhere at once.
var level = new(slog.LevelVar)

func parseLevel(s string) slog.Level {
	if l, ok := levels[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l
	}
	return slog.LevelInfo
}

// SetLevel changes the level of every logger created by this package.
// It is applied on config reload.
func SetLevel(s string) {
	level.Set(parseLevel(s))
}

// GetLevel returns the current level name: debug, info, warn or error.
func GetLevel() string {
	return strings.ToLower(level.Level().String())
}

// New creates a Logger and sets the shared level from cfg.
func New(cfg Config) (Logger, error) {
	return FromSlog(NewSlog(cfg)), nil
}

// NewSlog creates a *slog.Logger and sets the shared level from cfg.
func NewSlog(cfg Config) *slog.Logger {
	level.Set(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:       level,
		AddSource:   cfg.AddSource,
		ReplaceAttr: replaceAttr(cfg.LogValues),
	}

	switch strings.ToLower(cfg.Format) {
	case "text", "console":
		return slog.New(slog.NewTextHandler(out, opts))
	default:
		return slog.New(slog.NewJSONHandler(out, opts))
	}
}

// replaceAttr masks client payloads unless logValues is set and always
// redacts secrets.
func replaceAttr(logValues bool) func([]string, slog.Attr) slog.Attr {
	return func(_ []string, a slog.Attr) slog.Attr {
		if !logValues && isPayloadKey(a.Key) {
			return maskPayload(a)
		}
		return redactSensitive(a)
	}
}

// FromSlog adapts l to the Logger interface.
func FromSlog(l *slog.Logger) Logger {
	return &slogLogger{logger: l, ctx: context.Background()}
}

type slogLogger struct {
	logger *slog.Logger
	ctx    context.Context
}

func (l *slogLogger) log(lvl slog.Level, msg string, args []any) {
	l.logger.Log(l.ctx, lvl, msg, args...)
}

func (l *slogLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args) }
func (l *slogLogger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args) }
func (l *slogLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args) }

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{logger: l.logger.With(args...), ctx: l.ctx}
}

func (l *slogLogger) WithContext(ctx context.Context) Logger {
	return &slogLogger{logger: l.logger, ctx: ctx}
}

func (l *slogLogger) Slog() *slog.Logger {
	return l.logger
}

var defaultLogger atomic.Pointer[Logger]

func init() {
	SetDefault(FromSlog(NewSlog(DefaultConfig())))
}

// SetDefault installs l as the package default and as the slog default,
// so code that logs through slog directly shares its handler.
func SetDefault(l Logger) {
	defaultLogger.Store(&l)
	slog.SetDefault(l.Slog())
}

// Default returns the package default logger.
func Default() Logger {
	return *defaultLogger.Load()
}
