package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

type SlogLogger struct {
	logger *slog.Logger
}

type SlogOptions struct {
	// Out defaults to stderr.
	Out io.Writer
	// JSON switches from the text handler to the JSON handler.
	JSON bool
	// Debug lowers the level from info to debug.
	Debug bool
}

func NewSlogLogger() Logger {
	return NewSlogLoggerWithOptions(SlogOptions{})
}

func NewSlogLoggerWithOptions(opts SlogOptions) Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	ho := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(out, ho)
	} else {
		handler = slog.NewTextHandler(out, ho)
	}

	return &SlogLogger{
		logger: slog.New(handler),
	}
}

func (l *SlogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(fmt.Sprintf(msg, args...))
}

func (l *SlogLogger) Info(msg string, args ...any) {
	l.logger.Info(fmt.Sprintf(msg, args...))
}

func (l *SlogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(fmt.Sprintf(msg, args...))
}

func (l *SlogLogger) Error(msg string, args ...any) {
	l.logger.Error(fmt.Sprintf(msg, args...))
}
