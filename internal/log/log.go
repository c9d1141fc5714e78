// Package log provides a context-aware structured logger. Entries pick up the
// trace, request and operation identifiers stored in the context by the
// contexts package.
package log

import (
	"context"
	"sync/atomic"
)

var global atomic.Pointer[Logger]

func init() {
	global.Store(New(DefaultConfig()))
}

// SetGlobalConfig rebuilds the global logger from the given config.
func SetGlobalConfig(cfg Config) {
	global.Store(New(cfg))
}

// SetGlobalLogger replaces the global logger.
func SetGlobalLogger(logger *Logger) {
	global.Store(logger)
}

// GetGlobalLogger returns the logger used by the package-level functions.
func GetGlobalLogger() *Logger {
	return global.Load()
}

func Debug(ctx context.Context, msg string, fields ...Field) {
	global.Load().Debug(ctx, msg, fields...)
}

func Info(ctx context.Context, msg string, fields ...Field) {
	global.Load().Info(ctx, msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...Field) {
	global.Load().Warn(ctx, msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...Field) {
	global.Load().Error(ctx, msg, fields...)
}

func Fatal(ctx context.Context, msg string, fields ...Field) {
	global.Load().Fatal(ctx, msg, fields...)
}

// DebugEnabled reports whether the global logger emits debug entries. Callers
// use it to skip expensive field construction.
func DebugEnabled(_ context.Context) bool {
	return global.Load().DebugEnabled()
}
