// Package telemetry provides the level-gated logger the rig engine
// optionally writes retry, verify-mismatch and keyer-busy detail through.
package telemetry

import (
	"go.uber.org/zap"
)

// Logger wraps a *zap.SugaredLogger and tolerates a nil receiver: every
// method is a no-op when the Rig was opened without a logger.
type Logger struct {
	s *zap.SugaredLogger
}

// Nop returns a Logger that discards everything, the default when no
// logger is supplied to rig.Open.
func Nop() *Logger {
	return &Logger{}
}

// New wraps an existing zap logger, named for the component using it
// (e.g. "transaction", "setverify", "events").
func New(base *zap.Logger, component string) *Logger {
	if base == nil {
		return Nop()
	}
	return &Logger{s: base.Named(component).Sugar()}
}

func (l *Logger) Debugf(format string, args ...any) {
	if l == nil || l.s == nil {
		return
	}
	l.s.Debugf(format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	if l == nil || l.s == nil {
		return
	}
	l.s.Warnf(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	if l == nil || l.s == nil {
		return
	}
	l.s.Errorf(format, args...)
}
