// Package logging provides the scheduler's ambient diagnostic logger:
// startup/shutdown lines, warm-up warnings, and fatal error reports. It is
// entirely separate from the required stdout wire format and from the
// optional utilization log file in package sink — this is adapted from
// internal/common/logging's slog-backed Logger interface.
package logging

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"
)

// Logger is the scheduler's diagnostic logging interface.
type Logger interface {
	Debug(msg string)
	Debugf(format string, args ...any)
	Info(msg string)
	Infof(format string, args ...any)
	Warn(msg string)
	Warnf(format string, args ...any)
	Error(msg string)
	Errorf(format string, args ...any)
	With(key string, value any) Logger
	WithError(err error) Logger
	WithStacktrace(err error) Logger
}

// stackTracer is the unexported but stable interface implemented by errors
// produced with github.com/pkg/errors.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// New returns a Logger that writes text-formatted records to w at the given
// level.
func New(w io.Writer, level slog.Level) Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &slogLogger{delegate: slog.New(handler)}
}

type slogLogger struct {
	delegate *slog.Logger
}

func (l *slogLogger) Debug(msg string)  { l.delegate.Debug(msg) }
func (l *slogLogger) Info(msg string)   { l.delegate.Info(msg) }
func (l *slogLogger) Warn(msg string)   { l.delegate.Warn(msg) }
func (l *slogLogger) Error(msg string)  { l.delegate.Error(msg) }

func (l *slogLogger) Debugf(format string, args ...any) { l.delegate.Debug(fmt.Sprintf(format, args...)) }
func (l *slogLogger) Infof(format string, args ...any)  { l.delegate.Info(fmt.Sprintf(format, args...)) }
func (l *slogLogger) Warnf(format string, args ...any)  { l.delegate.Warn(fmt.Sprintf(format, args...)) }
func (l *slogLogger) Errorf(format string, args ...any) { l.delegate.Error(fmt.Sprintf(format, args...)) }

func (l *slogLogger) With(key string, value any) Logger {
	return &slogLogger{delegate: l.delegate.With(key, value)}
}

func (l *slogLogger) WithError(err error) Logger {
	return &slogLogger{delegate: l.delegate.With("error", err.Error())}
}

// WithStacktrace adds the error's message and, if available, its
// pkg/errors stack trace as fields.
func (l *slogLogger) WithStacktrace(err error) Logger {
	delegate := l.delegate.With("error", err.Error())
	if stackErr, ok := err.(stackTracer); ok {
		delegate = delegate.With("stacktrace", fmt.Sprintf("%+v", stackErr.StackTrace()))
	}
	return &slogLogger{delegate: delegate}
}

// ParseLevel maps the --log-level flag's string values onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, errors.Errorf("unknown log level %q", s)
	}
}
