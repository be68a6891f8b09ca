// Package logger provides structured logging for the ralph-pl0 compiler
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Output is discarded until Init is called.
var defaultLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// LogLevel represents the logging level
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[string]LogLevel{
	"debug": LevelDebug,
	"info":  LevelInfo,
	"warn":  LevelWarn,
	"error": LevelError,
}

// ParseLevel maps a level name (debug, info, warn, error) to a LogLevel
func ParseLevel(name string) (LogLevel, error) {
	level, ok := levelNames[strings.ToLower(name)]
	if !ok {
		return LevelInfo, errors.Errorf("unknown log level %q", name)
	}
	return level, nil
}

// Config holds logger configuration
type Config struct {
	Level     LogLevel
	Format    string // "text" or "json"
	Output    io.Writer
	AddSource bool
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// Init installs the package logger with the given configuration
func Init(cfg Config) error {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     toSlogLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "text", "":
		handler = slog.NewTextHandler(output, opts)
	default:
		return errors.Errorf("unknown log format %q", cfg.Format)
	}

	defaultLogger = slog.New(handler)
	return nil
}

// Discard silences the package logger again
func Discard() {
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func toSlogLevel(level LogLevel) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// With returns a logger carrying the given attributes
func With(args ...any) *slog.Logger {
	return defaultLogger.With(args...)
}

// LogPhase logs the start of a compilation phase
func LogPhase(phase string) {
	Info("starting phase", "phase", phase)
}

// LogPhaseComplete logs the completion of a compilation phase
func LogPhaseComplete(phase string, args ...any) {
	Info("completed phase", append([]any{"phase", phase}, args...)...)
}
