// Package logger holds the process-wide structured logger for heapctl.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// L is the global logger instance. It's initialized to discard all output by default.
// Call Init() to enable logging.
var L *slog.Logger = slog.New(slog.DiscardHandler)

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Level   slog.Level // Minimum log level
	JSON    bool       // JSON records instead of logfmt-style text
	File    string     // Append to this file instead of Output
	Output  io.Writer  // Destination when File is empty. Default: os.Stderr
}

// Init configures logging. It returns a close function that releases the
// log file, if one was opened; it is never nil.
func Init(opts Options) (func() error, error) {
	noop := func() error { return nil }
	if !opts.Enabled {
		L = slog.New(slog.DiscardHandler)
		return noop, nil
	}

	out, closeFn := opts.Output, noop
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return noop, err
		}
		out, closeFn = f, f.Close
	}
	if out == nil {
		out = os.Stderr
	}

	hopts := &slog.HandlerOptions{Level: opts.Level}
	if opts.JSON {
		L = slog.New(slog.NewJSONHandler(out, hopts))
	} else {
		L = slog.New(slog.NewTextHandler(out, hopts))
	}
	return closeFn, nil
}

// ParseLevel maps a --log-level value to Options. "off" and "" disable
// logging; anything else must be a slog level name such as "debug" or "warn".
func ParseLevel(s string) (enabled bool, level slog.Level, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off", "none":
		return false, 0, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return false, 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return true, level, nil
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) { L.Error(msg, args...) }
