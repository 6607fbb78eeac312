// Package logging provides the ambient logging layer every component logs
// through: colored, terminal-aware status lines for CLI-facing text
// (grounded on ingo-eichhorst-agent-readyness/internal/output/terminal.go's
// color.New(...).Fprintf badges and internal/agent/progress.go's
// isatty.IsTerminal/IsCygwinTerminal TTY check) composed with stdlib
// log/slog for structured fields, switching to JSON output when stdout is
// not a terminal so piped/CI output stays machine-parseable.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Logger wraps a slog.Logger with the component/operation fields every
// analysis package attaches, plus a terminal-aware Status line for
// human-facing CLI text.
type Logger struct {
	slog *slog.Logger
	out  io.Writer
	tty  bool
}

// IsTerminal reports whether f is an interactive terminal (a real tty or a
// Cygwin pty), the same check progress.go uses to decide whether to drive a
// live progress display.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// New builds a Logger writing structured fields to w: a human-readable text
// handler when w is a terminal, JSON otherwise.
func New(w *os.File) *Logger {
	tty := IsTerminal(w)
	var handler slog.Handler
	if tty {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{})
	}
	return &Logger{slog: slog.New(handler), out: w, tty: tty}
}

// Component returns a child Logger with component bound into every
// subsequent structured log line, mirroring slog.Logger.With without
// exposing slog's own type to callers.
func (l *Logger) Component(component string) *Logger {
	return &Logger{slog: l.slog.With("component", component), out: l.out, tty: l.tty}
}

// Operation logs operation's start and returns a function to call on
// completion that logs its duration and, if err is non-nil, its error —
// the file field records which file (if any) the operation concerned.
func (l *Logger) Operation(operation, file string) func(err error) {
	start := time.Now()
	l.slog.Info("operation started", "operation", operation, "file", file)
	return func(err error) {
		elapsed := time.Since(start)
		if err != nil {
			l.slog.Error("operation failed", "operation", operation, "file", file, "duration", elapsed, "error", err)
			return
		}
		l.slog.Info("operation completed", "operation", operation, "file", file, "duration", elapsed)
	}
}

// Info/Warn/Error pass through to the underlying structured logger.
func (l *Logger) Info(msg string, args ...any)  { l.slog.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.slog.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// Status prints a colored, human-facing status line (never structured
// fields) when the output is a terminal; on a non-terminal it degrades to
// a plain structured info log so the message isn't silently lost when
// piped or run under CI.
func (l *Logger) Status(kind StatusKind, msg string) {
	if !l.tty {
		l.slog.Info(msg, "status", string(kind))
		return
	}
	statusColor(kind).Fprintln(l.out, msg)
}

// StatusKind selects the color Status uses for a human-facing line.
type StatusKind string

const (
	StatusOK   StatusKind = "ok"
	StatusWarn StatusKind = "warn"
	StatusErr  StatusKind = "error"
)

func statusColor(kind StatusKind) *color.Color {
	switch kind {
	case StatusOK:
		return color.New(color.FgGreen)
	case StatusWarn:
		return color.New(color.FgYellow)
	case StatusErr:
		return color.New(color.FgRed)
	default:
		return color.New(color.Reset)
	}
}
