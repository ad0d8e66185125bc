package framego

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with framego-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithTable adds a table (blob) name field to the logger.
func (l *Logger) WithTable(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("table", name),
	}
}

// WithColumn adds a column field to the logger.
func (l *Logger) WithColumn(column string) *Logger {
	return &Logger{
		Logger: l.Logger.With("column", column),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogLoad logs a table load.
func (l *Logger) LogLoad(ctx context.Context, name string, rows int64, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"table", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "table loaded",
			"table", name,
			"rows", rows,
			"duration", duration,
		)
	}
}

// LogStore logs a table store.
func (l *Logger) LogStore(ctx context.Context, name string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "store failed",
			"table", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "table stored",
			"table", name,
			"bytes", bytes,
		)
	}
}

// LogIndexRepair logs an EnsureSliceableIndex call.
func (l *Logger) LogIndexRepair(ctx context.Context, derived string, replaced bool, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "index repair failed",
			"error", err,
		)
	case replaced:
		l.WarnContext(ctx, "non-sliceable index replaced",
			"derived", derived,
		)
	default:
		l.DebugContext(ctx, "index already sliceable")
	}
}

// LogMutation logs a guarded mutation.
func (l *Logger) LogMutation(ctx context.Context, rows int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "mutation failed",
			"rows", rows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "mutation committed",
			"rows", rows,
		)
	}
}

// LogTensorWrite logs a tensor write into a message.
func (l *Logger) LogTensorWrite(ctx context.Context, name string, rows int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "tensor write failed",
			"tensor", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "tensor written",
			"tensor", name,
			"rows", rows,
		)
	}
}
