package logger

import (
	"strings"
	"sync"
)

// Log levels accepted by the log.level config key.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Output encodings accepted by the log.format config key.
const (
	ConsoleFormat = "console"
	JSONFormat    = "json"
)

var (
	globalLogger *Logger
	once         sync.Once
)

// Get returns the process-wide logger. The first call fixes the level;
// later calls ignore the argument and return the same instance.
func Get(level, format string) *Logger {
	once.Do(func() {
		globalLogger = New(level, format)
	})
	return globalLogger
}

// New builds an independent logger, mostly useful in tests.
func New(level, format string) *Logger {
	return newZapLogger(normalize(level), normalize(format))
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
