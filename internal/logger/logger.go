// Package logger provides structured logging for the sftgen CLI.
// The --verbose flag raises the level to debug so users can follow the
// extraction and generation pipeline; --quiet drops it to errors only.
package logger

import (
	"context"
	"io"
	"os"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

// Logger is the structured logging interface used throughout the core.
// Key-value pairs follow the message: logger.Info("extracted", "file", path).
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)

	// With returns a logger carrying additional permanent key-value pairs.
	With(keyvals ...any) Logger
}

// Level controls logging verbosity.
type Level string

// Available levels.
const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

func (l Level) toCharm() charmlog.Level {
	switch l {
	case LevelDebug:
		return charmlog.DebugLevel
	case LevelWarn:
		return charmlog.WarnLevel
	case LevelError:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// Config controls logger construction.
type Config struct {
	// Level is the minimum level emitted.
	Level Level

	// Output is the destination writer. Defaults to stderr.
	Output io.Writer

	// TimeFormat is the timestamp layout. Empty disables timestamps.
	TimeFormat string
}

type charmLogger struct {
	l *charmlog.Logger
}

// New creates a logger from config.
func New(cfg Config) Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	l := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: cfg.TimeFormat != "",
		TimeFormat:      cfg.TimeFormat,
		Level:           cfg.Level.toCharm(),
	})
	return &charmLogger{l: l}
}

func (c *charmLogger) Debug(msg string, keyvals ...any) { c.l.Debug(msg, keyvals...) }
func (c *charmLogger) Info(msg string, keyvals ...any)  { c.l.Info(msg, keyvals...) }
func (c *charmLogger) Warn(msg string, keyvals ...any)  { c.l.Warn(msg, keyvals...) }
func (c *charmLogger) Error(msg string, keyvals ...any) { c.l.Error(msg, keyvals...) }

func (c *charmLogger) With(keyvals ...any) Logger {
	return &charmLogger{l: c.l.With(keyvals...)}
}

var (
	mu  sync.RWMutex
	cfg = Config{Level: LevelInfo}
	std = New(cfg)
)

// Default returns the package-level logger.
func Default() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return std
}

// SetVerbose raises the default logger to debug level.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	if v {
		cfg.Level = LevelDebug
	} else {
		cfg.Level = LevelInfo
	}
	std = New(cfg)
}

// SetQuiet drops the default logger to errors only.
func SetQuiet(q bool) {
	mu.Lock()
	defer mu.Unlock()
	if q {
		cfg.Level = LevelError
	} else {
		cfg.Level = LevelInfo
	}
	std = New(cfg)
}

// SetOutput redirects the default logger.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	cfg.Output = w
	std = New(cfg)
}

type ctxKey struct{}

// ContextWithLogger returns a context carrying the given logger.
// Long-running operations read it back with FromContext so callers can
// scope or redirect their logging, for example while a TUI owns the
// terminal.
func ContextWithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger attached to ctx, or the default logger
// when none is attached.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok && l != nil {
		return l
	}
	return Default()
}

// Debug logs at debug level on the default logger.
func Debug(msg string, keyvals ...any) { Default().Debug(msg, keyvals...) }

// Info logs at info level on the default logger.
func Info(msg string, keyvals ...any) { Default().Info(msg, keyvals...) }

// Warn logs at warn level on the default logger.
func Warn(msg string, keyvals ...any) { Default().Warn(msg, keyvals...) }

// Error logs at error level on the default logger.
func Error(msg string, keyvals ...any) { Default().Error(msg, keyvals...) }
