// Package log provides structured logging for the zkstf evaluator. It wraps
// go.uber.org/zap with per-module child loggers and key-value call sites.
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a sugared zap logger.
type Logger struct {
	inner *zap.SugaredLogger
}

// defaultLogger is the process-wide logger used by components that are not
// handed one explicitly.
var defaultLogger = New(zapcore.InfoLevel, FormatJSON)

// New creates a Logger that writes to stderr at the given level using the
// given output format.
func New(level zapcore.Level, format Format) *Logger {
	core := zapcore.NewCore(format.encoder(), zapcore.Lock(os.Stderr), level)
	return NewWithCore(core)
}

// NewWithCore creates a Logger backed by the supplied core. This is useful
// for testing with zaptest/observer or for writing to a custom destination.
func NewWithCore(core zapcore.Core) *Logger {
	return &Logger{inner: zap.New(core).Sugar()}
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{inner: zap.NewNop().Sugar()}
}

// SetDefault replaces the package-level default logger.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// Default returns the current package-level default logger.
func Default() *Logger {
	return defaultLogger
}

// Module returns a child logger with an additional "module" field. This is
// how subsystems (executor, guest, cli) obtain their own logger.
func (l *Logger) Module(name string) *Logger {
	return &Logger{inner: l.inner.With("module", name)}
}

// With returns a child logger with additional key-value context.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{inner: l.inner.With(args...)}
}

// Enabled reports whether the logger emits entries at level.
func (l *Logger) Enabled(level zapcore.Level) bool {
	return l.inner.Desugar().Core().Enabled(level)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error { return l.inner.Sync() }

// Debug logs at DebugLevel.
func (l *Logger) Debug(msg string, args ...any) { l.inner.Debugw(msg, args...) }

// Info logs at InfoLevel.
func (l *Logger) Info(msg string, args ...any) { l.inner.Infow(msg, args...) }

// Warn logs at WarnLevel.
func (l *Logger) Warn(msg string, args ...any) { l.inner.Warnw(msg, args...) }

// Error logs at ErrorLevel.
func (l *Logger) Error(msg string, args ...any) { l.inner.Errorw(msg, args...) }
