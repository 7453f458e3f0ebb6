// Package logging provides a thin structured-logging wrapper around zap for
// the collaborator layer (collect, httpapi). The pricing core stays
// logging-free; only code that talks to the outside world logs.
package logging

import (
	"go.uber.org/zap"
)

// Logger wraps a zap.SugaredLogger with the fields every event in this
// service carries: the component that emitted it.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New builds a production JSON logger tagged with component.
func New(component string) *Logger {
	base, err := zap.NewProduction()
	if err != nil {
		base = zap.NewNop()
	}
	return &Logger{sugar: base.Sugar().With("component", component)}
}

// Nop returns a Logger that discards everything, for tests.
func Nop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func (l *Logger) Info(msg string, kv ...interface{})  { l.sugar.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.sugar.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.sugar.Errorw(msg, kv...) }

// Sync flushes any buffered log entries. Call before process exit.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
