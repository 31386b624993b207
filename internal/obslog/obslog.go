// Package obslog wraps zap with the single call the rest of efyj-go needs:
// a Logger handle threaded explicitly through the driver and the CLI.
//
// The core packages (model, eval, reduce, walker, kappa, search, parallel,
// sink) never reach for a package-level logger — every call site that logs
// takes a *Logger parameter, per the "no process-wide logging state" design
// note. A nil *Logger is valid and discards everything, so tests that don't
// care about logging can pass nil.
package obslog

import (
	"go.uber.org/zap"
)

// Logger is the handle passed down from the CLI (or a library caller) into
// the search driver and the parallel coordinator.
type Logger struct {
	z *zap.SugaredLogger
}

// New wraps a *zap.SugaredLogger. Passing nil is valid and yields a Logger
// whose methods are no-ops.
func New(z *zap.SugaredLogger) *Logger {
	return &Logger{z: z}
}

// NewProduction builds a Logger backed by zap's production JSON config,
// matching the encoder most services in the corpus ship with.
func NewProduction() (*Logger, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &Logger{z: z.Sugar()}, nil
}

// NewDevelopment builds a Logger backed by zap's human-readable console
// encoder, used by the CLI by default.
func NewDevelopment() (*Logger, error) {
	z, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &Logger{z: z.Sugar()}, nil
}

// Nop returns a Logger that discards everything, for tests and library
// callers who pass no logger at all.
func Nop() *Logger {
	return &Logger{z: zap.NewNop().Sugar()}
}

// Infow logs a leveled message with structured key/value pairs, mirroring
// the "| step | kappa | loop | duration |" info() calls in the original
// solver but as structured fields instead of printf columns.
func (l *Logger) Infow(msg string, kv ...interface{}) {
	if l == nil || l.z == nil {
		return
	}
	l.z.Infow(msg, kv...)
}

// Warnw logs a leveled warning with structured key/value pairs.
func (l *Logger) Warnw(msg string, kv ...interface{}) {
	if l == nil || l.z == nil {
		return
	}
	l.z.Warnw(msg, kv...)
}

// Errorw logs a leveled error with structured key/value pairs.
func (l *Logger) Errorw(msg string, kv ...interface{}) {
	if l == nil || l.z == nil {
		return
	}
	l.z.Errorw(msg, kv...)
}

// Sync flushes any buffered log entries; call before process exit.
func (l *Logger) Sync() error {
	if l == nil || l.z == nil {
		return nil
	}
	return l.z.Sync()
}
