// Package logging provides core.Logger implementations: the default
// structured logger built on log/slog, and a legacy adapter for callers
// already standardized on logrus.
package logging

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/netresearch/chronos/core"
)

// ErrInvalidLogLevel indicates an invalid log level string was provided to
// ApplyLevel.
var ErrInvalidLogLevel = errors.New("invalid log level")

// ApplyLevel sets lv from a level name, accepting both slog's own names and
// the legacy logrus-style names (trace, notice, critical) so a config file
// written for either backend parses the same way.
func ApplyLevel(level string, lv *slog.LevelVar) error {
	if level == "" {
		return nil
	}
	var l slog.Level
	switch strings.ToLower(level) {
	case "trace", "debug":
		l = slog.LevelDebug
	case "info", "notice":
		l = slog.LevelInfo
	case "warning", "warn":
		l = slog.LevelWarn
	case "error", "fatal", "panic", "critical":
		l = slog.LevelError
	default:
		return fmt.Errorf("%w: %q (valid levels are debug, info, warn, error)", ErrInvalidLogLevel, level)
	}
	if lv != nil {
		lv.Set(l)
	}
	return nil
}

// SlogLogger adapts *slog.Logger to core.Logger. Notice and Critical have no
// direct slog level, so they map to Info and Error respectively, each tagged
// with a "severity" attribute that preserves the original distinction.
type SlogLogger struct {
	logger *slog.Logger
}

var _ core.Logger = (*SlogLogger)(nil)

// NewSlogLogger wraps logger. A nil logger uses slog.Default().
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

func (l *SlogLogger) Debugf(format string, args ...any) { l.logger.Debug(fmt.Sprintf(format, args...)) }

func (l *SlogLogger) Noticef(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...), "severity", "notice")
}

func (l *SlogLogger) Warningf(format string, args ...any) { l.logger.Warn(fmt.Sprintf(format, args...)) }

func (l *SlogLogger) Errorf(format string, args ...any) { l.logger.Error(fmt.Sprintf(format, args...)) }

func (l *SlogLogger) Criticalf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...), "severity", "critical")
}
