// Package logger defines the leveled logger shared by every crawler
// component, with std, slog and zerolog backed implementations.
package logger

import "log"

// Logger is a minimal printf-style leveled logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// StdLogger writes through the standard library log package. It is the
// default when nothing else is configured.
type StdLogger struct{}

func NewStdLogger() Logger {
	return &StdLogger{}
}

func (l *StdLogger) Debug(msg string, args ...any) {
	log.Printf("[DEBUG] "+msg, args...)
}

func (l *StdLogger) Info(msg string, args ...any) {
	log.Printf("[INFO] "+msg, args...)
}

func (l *StdLogger) Warn(msg string, args ...any) {
	log.Printf("[WARN] "+msg, args...)
}

func (l *StdLogger) Error(msg string, args ...any) {
	log.Printf("[ERROR] "+msg, args...)
}

// NopLogger discards everything. Handy in tests.
type NopLogger struct{}

func NewNopLogger() Logger {
	return &NopLogger{}
}

func (l *NopLogger) Debug(msg string, args ...any) {}
func (l *NopLogger) Info(msg string, args ...any)  {}
func (l *NopLogger) Warn(msg string, args ...any)  {}
func (l *NopLogger) Error(msg string, args ...any) {}
