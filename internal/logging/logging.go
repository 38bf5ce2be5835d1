// Package logging provides the leveled logger used across the IR tooling.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

func (l Level) slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// ParseLevel converts a level name as found in configuration files
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Format represents a log output format
type Format int

const (
	// FormatText outputs logs in human-readable text format
	FormatText Format = iota
	// FormatJSON outputs logs in JSON format
	FormatJSON
)

// ParseFormat converts a format name as found in configuration files
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatText, fmt.Errorf("unknown log format %q", s)
}

// Logger provides centralized leveled logging with per-level counters
type Logger struct {
	mu         sync.Mutex
	prefix     string
	out        *slog.Logger
	errorCount int
	warnCount  int
	infoCount  int
	debugCount int
}

// New creates a logger writing to w at the given minimum level
func New(prefix string, w io.Writer, level Level, format Format) *Logger {
	opts := &slog.HandlerOptions{
		Level: level.slog(),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &Logger{prefix: prefix, out: slog.New(handler)}
}

// Discard returns a logger that counts messages but writes nothing
func Discard() *Logger {
	return New("", io.Discard, LevelError+1, FormatText)
}

var defaultLogger = New("[irbuild]", os.Stderr, LevelInfo, FormatText)

// Default returns the process-wide logger
func Default() *Logger { return defaultLogger }

// SetDefault replaces the process-wide logger
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// With returns a logger that shares the output but adds key-value attributes
func (l *Logger) With(args ...any) *Logger {
	return &Logger{prefix: l.prefix, out: l.out.With(args...)}
}

// Slog exposes the underlying structured logger
func (l *Logger) Slog() *slog.Logger { return l.out }

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...any) {
	l.log(LevelDebug, format, args...)
	l.mu.Lock()
	l.debugCount++
	l.mu.Unlock()
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, format, args...)
	l.mu.Lock()
	l.infoCount++
	l.mu.Unlock()
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...any) {
	l.log(LevelWarning, format, args...)
	l.mu.Lock()
	l.warnCount++
	l.mu.Unlock()
}

// Error logs an error message
func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, format, args...)
	l.mu.Lock()
	l.errorCount++
	l.mu.Unlock()
}

// ErrorAt logs an error at an IR location such as "@main/entry"
func (l *Logger) ErrorAt(location string, format string, args ...any) {
	l.Error("%s: %s", location, fmt.Sprintf(format, args...))
}

// WarningAt logs a warning at an IR location
func (l *Logger) WarningAt(location string, format string, args ...any) {
	l.Warning("%s: %s", location, fmt.Sprintf(format, args...))
}

func (l *Logger) log(level Level, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		message = l.prefix + " " + message
	}
	l.out.Log(context.Background(), level.slog(), message)
}

// HasErrors returns true if any errors were logged
func (l *Logger) HasErrors() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errorCount > 0
}

// ErrorCount returns the number of errors logged
func (l *Logger) ErrorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errorCount
}

// WarningCount returns the number of warnings logged
func (l *Logger) WarningCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.warnCount
}

// DebugCount returns the number of debug messages logged
func (l *Logger) DebugCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debugCount
}

// Reset resets all counters
func (l *Logger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errorCount = 0
	l.warnCount = 0
	l.infoCount = 0
	l.debugCount = 0
}

// PrintSummary writes a summary of logged problems to w
func (l *Logger) PrintSummary(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.errorCount > 0 || l.warnCount > 0 {
		fmt.Fprintf(w, "\n%s Summary:\n", l.prefix)
		if l.errorCount > 0 {
			fmt.Fprintf(w, "  Errors: %d\n", l.errorCount)
		}
		if l.warnCount > 0 {
			fmt.Fprintf(w, "  Warnings: %d\n", l.warnCount)
		}
	}
}
