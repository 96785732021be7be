// Package logger provides structured logging configuration for the application.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogFormat represents the output format for logs
type LogFormat string

const (
	// FormatJSON outputs logs in JSON format (production default)
	FormatJSON LogFormat = "json"
	// FormatText outputs logs in human-readable text format (development default)
	FormatText LogFormat = "text"
)

// Options controls how the logger is built.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// New creates a structured logger.
//
// Level options: debug, info, warn, error (default: info)
// Format options: json, text (default: json)
func New(opts Options) *slog.Logger {
	level := ParseLevel(opts.Level)

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelWarn,
	}

	var handler slog.Handler
	switch ParseFormat(opts.Format) {
	case FormatText:
		handler = slog.NewTextHandler(out, handlerOpts)
	default:
		handler = slog.NewJSONHandler(out, handlerOpts)
	}

	return slog.New(handler).With("service", "athing-api")
}

// ParseLevel maps a level name to a slog.Level, falling back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseFormat maps a format name to a LogFormat, falling back to JSON.
func ParseFormat(name string) LogFormat {
	if strings.EqualFold(strings.TrimSpace(name), string(FormatText)) {
		return FormatText
	}
	return FormatJSON
}

// SetDefault sets the given logger as the default slog logger
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
