// Package observability provides leveled logging and terminal reporting for the
// career-path service.
package observability

import (
	"io"
	"os"
	"strings"

	"github.com/kataras/golog"
)

// Logger is the leveled logger every component receives by injection.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

// GologLogger implements Logger using kataras/golog
type GologLogger struct {
	logger *golog.Logger
	level  string
}

var _ Logger = (*GologLogger)(nil)

// NewLogger creates a logger writing to out at the given level
// (debug, info, warn, error, disable). Unknown levels fall back to info.
func NewLogger(out io.Writer, level string) *GologLogger {
	if out == nil {
		out = os.Stderr
	}
	l := golog.New()
	l.SetOutput(out)
	l.SetPrefix("[career-path] ")
	l.SetTimeFormat("2006-01-02 15:04:05")

	g := &GologLogger{logger: l}
	g.SetLevel(level)
	return g
}

// NewGologLogger wraps an existing golog.Logger.
func NewGologLogger(logger *golog.Logger) *GologLogger {
	return &GologLogger{logger: logger, level: "info"}
}

// NopLogger returns a logger that discards everything.
func NopLogger() *GologLogger {
	return NewLogger(io.Discard, "disable")
}

// Debug logs debug messages
func (l *GologLogger) Debug(format string, v ...any) {
	l.logger.Debugf(format, v...)
}

// Info logs informational messages
func (l *GologLogger) Info(format string, v ...any) {
	l.logger.Infof(format, v...)
}

// Warn logs warning messages
func (l *GologLogger) Warn(format string, v ...any) {
	l.logger.Warnf(format, v...)
}

// Error logs error messages
func (l *GologLogger) Error(format string, v ...any) {
	l.logger.Errorf(format, v...)
}

// SetLevel sets the log level by name.
func (l *GologLogger) SetLevel(level string) {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "debug", "info", "warn", "error", "disable":
	default:
		level = "info"
	}
	l.level = level
	l.logger.SetLevel(level)
}

// Level returns the current level name.
func (l *GologLogger) Level() string {
	return l.level
}
