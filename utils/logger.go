package utils

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger provides structured, leveled logging throughout the application.
type Logger struct {
	entry *logrus.Logger
}

// NewLogger creates a new Logger writing to stdout at the level named by
// LOG_LEVEL (debug, info, warn, error). Unknown or empty values mean info.
func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout, os.Getenv("LOG_LEVEL"))
}

// NewLoggerTo creates a Logger writing to w at the given level.
func NewLoggerTo(w io.Writer, level string) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	return &Logger{entry: l}
}

// NewNopLogger returns a Logger that discards everything. Used in tests.
func NewNopLogger() *Logger {
	return NewLoggerTo(io.Discard, "error")
}

func (l *Logger) Info(format string, args ...any) {
	l.entry.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.entry.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.entry.Debugf(format, args...)
}

// With returns a logrus entry carrying the given fields, for the few call
// sites that log key/value context rather than a formatted line.
func (l *Logger) With(fields map[string]any) *logrus.Entry {
	return l.entry.WithFields(logrus.Fields(fields))
}
