package logging

import (
	"github.com/sirupsen/logrus"

	"github.com/netresearch/chronos/core"
)

// LogrusLogger adapts a *logrus.Logger to core.Logger, for deployments that
// already centralize on logrus output formatting and hooks.
type LogrusLogger struct {
	*logrus.Logger
}

var _ core.Logger = (*LogrusLogger)(nil)

// NewLogrusLogger wraps logger. A nil logger uses logrus.StandardLogger().
func NewLogrusLogger(logger *logrus.Logger) *LogrusLogger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogrusLogger{Logger: logger}
}

// Criticalf logs at ErrorLevel with a "critical" field rather than
// logrus.FatalLevel, which calls os.Exit after logging; a listener or runner
// reporting a critical condition must never be able to terminate the process.
func (l *LogrusLogger) Criticalf(format string, args ...any) {
	l.Logger.WithField("severity", "critical").Errorf(format, args...)
}

func (l *LogrusLogger) Debugf(format string, args ...any) { l.Logger.Debugf(format, args...) }

func (l *LogrusLogger) Errorf(format string, args ...any) { l.Logger.Errorf(format, args...) }

func (l *LogrusLogger) Noticef(format string, args ...any) { l.Logger.Infof(format, args...) }

func (l *LogrusLogger) Warningf(format string, args ...any) { l.Logger.Warnf(format, args...) }
