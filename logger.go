package uniqip

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with uniqip-specific context.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithStage adds a pipeline stage field to the logger.
func (l *Logger) WithStage(stage string) *Logger {
	return &Logger{
		Logger: l.Logger.With("stage", stage),
	}
}

// LogFlush logs one batch sort-and-flush.
func (l *Logger) LogFlush(ctx context.Context, path string, records int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "run flush failed",
			"run", path,
			"records", records,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "run flushed",
			"run", path,
			"records", records,
		)
	}
}

// LogReducePass logs the completion of one reduction generation.
func (l *Logger) LogReducePass(ctx context.Context, level, before, after int) {
	l.InfoContext(ctx, "reduce pass completed",
		"level", level,
		"runs_before", before,
		"runs_after", after,
	)
}

// LogMerge logs one batch merge.
func (l *Logger) LogMerge(ctx context.Context, path string, inputs int, records int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "merge failed",
			"output", path,
			"inputs", inputs,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "merge completed",
			"output", path,
			"inputs", inputs,
			"records", records,
		)
	}
}

// LogCount logs the final counting stage.
func (l *Logger) LogCount(ctx context.Context, runs int, distinct uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "distinct count failed",
			"runs", runs,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "distinct count completed",
			"runs", runs,
			"distinct", distinct,
		)
	}
}

// LogWorkspaceCleanup logs workspace teardown. Cleanup failures are warnings
// only: at this point the count has already been produced.
func (l *Logger) LogWorkspaceCleanup(ctx context.Context, dir string, err error) {
	if err != nil {
		l.WarnContext(ctx, "workspace cleanup failed",
			"dir", dir,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "workspace removed",
			"dir", dir,
		)
	}
}
