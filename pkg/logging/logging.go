// Package logging builds the structured loggers used across valence.
//
// Loggers are plain *slog.Logger values; this package only decides the
// handler, level and destination. Libraries take a logger as a parameter and
// fall back to slog.Default() when given nil.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config configures a logger. The zero value writes Info and above to stderr
// as text.
type Config struct {
	// Level is one of "debug", "info", "warn" or "error". Empty means info.
	Level string `yaml:"level" json:"level" validate:"omitempty,oneof=debug info warn error"`

	// JSON switches the handler from text to JSON lines.
	JSON bool `yaml:"json" json:"json"`

	// Output defaults to os.Stderr.
	Output io.Writer `yaml:"-" json:"-"`
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// New creates a logger. An unknown level falls back to info.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	level, _ := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.JSON {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	return slog.New(h)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OrDefault returns logger, or slog.Default() if it is nil.
func OrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
