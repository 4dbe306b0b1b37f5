package bvhmb

import (
	"go.uber.org/zap"

	"github.com/lp249839965/embree/pkg/core"
)

// zapLogger adapts a *zap.SugaredLogger to core.Logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger wraps a zap.SugaredLogger as a core.Logger.
func NewZapLogger(s *zap.SugaredLogger) core.Logger {
	return &zapLogger{s: s}
}

func (l *zapLogger) Printf(format string, args ...interface{}) {
	l.s.Infof(format, args...)
}

// discardLogger is the zero-cost core.Logger used when the caller doesn't
// supply one, matching the teacher's convention of never leaving a
// required interface field nil.
type discardLogger struct{}

// NewDiscardLogger returns a core.Logger that drops everything it's given.
func NewDiscardLogger() core.Logger {
	return discardLogger{}
}

func (discardLogger) Printf(format string, args ...interface{}) {}
