package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{FATAL, "FATAL"},
		{LogLevel(999), "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}

func TestLogLevelOrdering(t *testing.T) {
	assert.Less(t, int(DEBUG), int(INFO))
	assert.Less(t, int(INFO), int(WARN))
	assert.Less(t, int(WARN), int(ERROR))
	assert.Less(t, int(ERROR), int(FATAL))
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(DEBUG)
	require.NotNil(t, logger)
	require.NotNil(t, logger.entry)
}

func TestNewLoggerWithName(t *testing.T) {
	logger := NewLoggerWithName("test-logger")
	require.NotNil(t, logger)
	assert.Equal(t, "test-logger", logger.GetName())
}

func TestDefaultLogger(t *testing.T) {
	logger := DefaultLogger()
	require.NotNil(t, logger)
}

func TestNewTestLogger(t *testing.T) {
	logger := NewTestLogger("test")
	require.NotNil(t, logger)
	assert.Equal(t, "test", logger.GetName())
}

func loggerWithBuffer(level LogLevel) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetLevel(level.logrusLevel())
	base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return &Logger{entry: logrus.NewEntry(base)}, &buf
}

func TestLoggerDebug(t *testing.T) {
	logger, buf := loggerWithBuffer(DEBUG)
	logger.Debug("test debug message")
	assert.Contains(t, buf.String(), "test debug message")
	assert.Contains(t, strings.ToLower(buf.String()), "debug")
}

func TestLoggerDebugFilteredByLevel(t *testing.T) {
	logger, buf := loggerWithBuffer(INFO)
	logger.Debug("this should not appear")
	assert.Empty(t, buf.String())
}

func TestLoggerInfo(t *testing.T) {
	logger, buf := loggerWithBuffer(INFO)
	logger.Info("test info message")
	assert.Contains(t, buf.String(), "test info message")
}

func TestLoggerWarnFilteredByLevel(t *testing.T) {
	logger, buf := loggerWithBuffer(ERROR)
	logger.Warn("this should not appear")
	assert.Empty(t, buf.String())
}

func TestLoggerErrorWithFormatting(t *testing.T) {
	logger, buf := loggerWithBuffer(INFO)
	logger.Error("formatted message: %s = %d", "value", 42)
	assert.Contains(t, buf.String(), "formatted message: value = 42")
}

func TestLoggerWithFieldAndWithError(t *testing.T) {
	logger, buf := loggerWithBuffer(INFO)
	derived := logger.WithField("path", "main.go").WithError(assertError("boom"))
	derived.Info("failed")
	out := buf.String()
	assert.Contains(t, out, "path=main.go")
	assert.Contains(t, out, "boom")
}

type simpleError string

func (e simpleError) Error() string { return string(e) }

func assertError(msg string) error { return simpleError(msg) }

func TestGlobalLoggingFunctions(t *testing.T) {
	orig := defaultLogger
	defer func() { defaultLogger = orig }()

	logger, buf := loggerWithBuffer(DEBUG)
	defaultLogger = logger

	Debug("global debug test")
	Info("global info test")
	Warn("global warn test")
	Error("global error test")

	out := buf.String()
	assert.Contains(t, out, "global debug test")
	assert.Contains(t, out, "global info test")
	assert.Contains(t, out, "global warn test")
	assert.Contains(t, out, "global error test")
}
