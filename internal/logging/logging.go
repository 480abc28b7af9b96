// Package logging provides structured logging for wearsim.
//
// This package wraps the standard library's log/slog package to provide
// consistent logging across all pipeline stages. It supports text and JSON
// output, configurable levels, component loggers and run-scoped attributes.
//
// Usage:
//
//	// Initialize at startup
//	logging.Init(slog.LevelInfo, logging.FormatAuto)
//
//	// Get a component logger
//	log := logging.Component("segment")
//	log.Info("windows aggregated", "windows", 8)
//
//	// Log with run context
//	ctx = logging.ContextWithRunID(ctx, logging.NewRunID())
//	logging.WithContext(ctx).Info("run started")
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/term"
)

// Format selects the handler used by Init.
type Format int

const (
	// FormatAuto picks text on a terminal and JSON otherwise.
	FormatAuto Format = iota
	FormatText
	FormatJSON
)

// ParseFormat parses "auto", "text" or "json".
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "text":
		return FormatText
	case "json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

// ParseLevel parses a slog level name, falling back to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Logger is the global logger instance.
var Logger *slog.Logger

// Init initializes the global logger writing to stderr.
func Init(level slog.Level, format Format) {
	InitWriter(os.Stderr, level, format)
}

// InitWriter initializes the global logger on an arbitrary writer.
// FormatAuto resolves to text only when w is a terminal.
func InitWriter(w io.Writer, level slog.Level, format Format) {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	if format == FormatAuto {
		format = FormatJSON
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			format = FormatText
		}
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

// InitWithHandler initializes the global logger with a custom handler.
// This is useful for testing or custom output destinations.
func InitWithHandler(handler slog.Handler) {
	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

func ensure() {
	if Logger == nil {
		Init(slog.LevelInfo, FormatText)
	}
}

// With returns a new logger with additional attributes.
func With(args ...any) *slog.Logger {
	ensure()
	return Logger.With(args...)
}

// Component returns a logger for a specific component.
//
// Example:
//
//	log := logging.Component("rollup")
//	log.Info("started") // Output: time=... level=INFO component=rollup msg=started
func Component(name string) *slog.Logger {
	ensure()
	return Logger.With("component", name)
}

// WithContext returns a logger that includes run-scoped context values.
func WithContext(ctx context.Context) *slog.Logger {
	ensure()

	logger := Logger

	if runID, ok := ctx.Value(contextKeyRunID).(string); ok {
		logger = logger.With("run_id", runID)
	}
	if identity, ok := ctx.Value(contextKeyIdentity).(string); ok {
		logger = logger.With("identity", identity)
	}

	return logger
}

// ComponentContext combines Component and WithContext.
func ComponentContext(ctx context.Context, name string) *slog.Logger {
	return WithContext(ctx).With("component", name)
}

// Context key types for type-safe context value extraction.
type contextKey int

const (
	contextKeyRunID contextKey = iota
	contextKeyIdentity
)

// NewRunID returns a fresh identifier for one pipeline run.
func NewRunID() string {
	return uuid.NewString()
}

// ContextWithRunID adds a run ID to the context for logging.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, contextKeyRunID, runID)
}

// RunIDFromContext returns the run ID stored in ctx, if any.
func RunIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKeyRunID).(string)
	return id, ok
}

// ContextWithIdentity adds the simulated sensor identity to the context.
func ContextWithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, contextKeyIdentity, identity)
}

// =============================================================================
// Convenience Functions
// =============================================================================

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	ensure()
	Logger.Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	ensure()
	Logger.Info(msg, args...)
}

// Warn logs at warning level.
func Warn(msg string, args ...any) {
	ensure()
	Logger.Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	ensure()
	Logger.Error(msg, args...)
}
