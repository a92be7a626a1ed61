// Package logger is a structured-logging abstraction over the concrete zap
// backend, so call sites depend on Field/Logger rather than zap directly.
package logger

import "time"

// Field is a single key-value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// Logger wraps the leveled logging methods used across the service.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// Fatal logs at fatal level and then calls os.Exit(1).
	Fatal(msg string, fields ...Field)
	// With returns a child Logger carrying fields on every subsequent call.
	With(fields ...Field) Logger
}

// Option represents a configuration option for the logger
type Option func(any) error

// LoggerFactory creates a new logger instance with the given options
type LoggerFactory func(opts ...Option) (Logger, error)

// String creates a Field with a string value
func String(key string, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates a Field with an int value
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates a Field with an int64 value
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Float64 creates a Field with a float64 value
func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a Field with a bool value
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a Field with a time.Duration value
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Time creates a Field with a time.Time value
func Time(key string, value time.Time) Field {
	return Field{Key: key, Value: value}
}

// Error creates a Field with an error value
func Error(err error) Field {
	return Field{Key: "error", Value: err}
}

// Any creates a Field with any value
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Network creates a Field carrying a chain ID, the tag attached to nearly
// every watcher/registry log line.
func Network(id string) Field {
	return Field{Key: "network", Value: id}
}
