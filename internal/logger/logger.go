// Package logger provides the structured, leveled logger used throughout the
// engine. It wraps github.com/charmbracelet/log directly, deriving
// step-scoped loggers with WithFields(fields).
package logger

import (
	"io"
	"os"
	"sort"
	"strings"

	cblog "github.com/charmbracelet/log"
)

// Options describes logger configuration supplied at creation time.
type Options struct {
	Level         string
	HumanReadable bool
	Writer        io.Writer
}

// Logger is a structured logger that can be derived with persistent fields,
// backing the per-step logger hierarchy (log_level overrides, the optional
// set-logger injection hook).
type Logger struct {
	base *cblog.Logger
}

// New creates a configured Logger instance based on Options.
func New(opts Options) (*Logger, error) {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stdout
	}

	level := cblog.InfoLevel
	if opts.Level != "" {
		parsed, err := cblog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	cblogOpts := cblog.Options{
		Level:           level,
		ReportTimestamp: true,
	}
	if !opts.HumanReadable {
		cblogOpts.Formatter = cblog.JSONFormatter
	}

	return &Logger{base: cblog.NewWithOptions(writer, cblogOpts)}, nil
}

// WithFields returns a derived logger that always writes the supplied
// fields, sorted for deterministic output.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	if l == nil || l.base == nil || len(fields) == 0 {
		return l
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	args := make([]interface{}, 0, len(fields)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}

	return &Logger{base: l.base.With(args...)}
}

// WithLevel returns a derived logger overriding the level; used when a step
// definition supplies its own log_level. Accepts the workflow schema's
// DEBUG|INFO|WARNING|ERROR spelling as well as charmbracelet/log's own
// debug|info|warn|error.
func (l *Logger) WithLevel(level string) *Logger {
	if l == nil || l.base == nil || level == "" {
		return l
	}
	normalized := strings.ToLower(level)
	if normalized == "warning" {
		normalized = "warn"
	}
	parsed, err := cblog.ParseLevel(normalized)
	if err != nil {
		return l
	}
	next := l.base.With()
	next.SetLevel(parsed)
	return &Logger{base: next}
}

// Info writes an informational log entry.
func (l *Logger) Info(msg string) {
	if l == nil || l.base == nil {
		return
	}
	l.base.Info(strings.TrimSpace(msg))
}

// Debug writes a debug-level log entry if enabled.
func (l *Logger) Debug(msg string) {
	if l == nil || l.base == nil {
		return
	}
	l.base.Debug(strings.TrimSpace(msg))
}

// Warn writes a warning level log entry.
func (l *Logger) Warn(msg string) {
	if l == nil || l.base == nil {
		return
	}
	l.base.Warn(strings.TrimSpace(msg))
}

// Error writes an error log entry including the supplied error context.
func (l *Logger) Error(err error, msg string) {
	if l == nil || l.base == nil {
		return
	}
	if err != nil {
		l.base.Error(strings.TrimSpace(msg), "error", err)
		return
	}
	l.base.Error(strings.TrimSpace(msg))
}
