// Package logging provides the structured logger every repomap component
// logs through. It wraps logrus rather than the standard library so fields
// attach to log lines instead of being interpolated into the message.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is a named, leveled wrapper around a logrus entry.
type Logger struct {
	entry *logrus.Entry
	name  string
}

// LogLevel mirrors logrus' severity levels under the names the rest of this
// repository uses.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) logrusLevel() logrus.Level {
	switch l {
	case DEBUG:
		return logrus.DebugLevel
	case INFO:
		return logrus.InfoLevel
	case WARN:
		return logrus.WarnLevel
	case ERROR:
		return logrus.ErrorLevel
	case FATAL:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

func newBase() *logrus.Logger {
	base := logrus.New()
	base.SetOutput(os.Stdout)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return base
}

// NewLogger creates a logger at the given level with no component name.
func NewLogger(level LogLevel) *Logger {
	base := newBase()
	base.SetLevel(level.logrusLevel())
	return &Logger{entry: logrus.NewEntry(base)}
}

// NewLoggerWithName creates an INFO-level logger tagged with a component
// name via a structured "component" field.
func NewLoggerWithName(name string) *Logger {
	base := newBase()
	base.SetLevel(logrus.InfoLevel)
	return &Logger{entry: base.WithField("component", name), name: name}
}

// DefaultLogger returns an INFO-level logger.
func DefaultLogger() *Logger {
	return NewLogger(INFO)
}

// NewTestLogger creates a logger suitable for use in tests.
func NewTestLogger(name string) *Logger {
	return NewLoggerWithName(name)
}

// GetName returns the logger's component name, if any.
func (l *Logger) GetName() string {
	return l.name
}

// WithField returns a derived logger carrying an additional structured field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value), name: l.name}
}

// WithError returns a derived logger carrying an "error" field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err), name: l.name}
}

func (l *Logger) Debug(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
func (l *Logger) Fatal(format string, args ...interface{}) { l.entry.Fatalf(format, args...) }

var defaultLogger = DefaultLogger()

func Debug(format string, args ...interface{}) { defaultLogger.Debug(format, args...) }
func Info(format string, args ...interface{})  { defaultLogger.Info(format, args...) }
func Warn(format string, args ...interface{})  { defaultLogger.Warn(format, args...) }
func Error(format string, args ...interface{}) { defaultLogger.Error(format, args...) }
func Fatal(format string, args ...interface{}) { defaultLogger.Fatal(format, args...) }
