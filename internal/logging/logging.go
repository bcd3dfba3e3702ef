// Package logging builds the slog loggers used across go-kitsu.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Options configures New.
type Options struct {
	// Verbose enables debug records.
	Verbose bool
	// JSON switches the handler from text to JSON output.
	JSON bool
	// Writer defaults to os.Stderr.
	Writer io.Writer
}

// New returns a slog.Logger configured from opts.
func New(opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: level}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

// Logger is the subset of slog the library packages log through.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

type slogLogger struct{ l *slog.Logger }

// FromSlog adapts l to Logger. A nil l yields Nop().
func FromSlog(l *slog.Logger) Logger {
	if l == nil {
		return Nop()
	}
	return slogLogger{l: l}
}

func (s slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }
func (s slogLogger) With(args ...any) Logger       { return slogLogger{l: s.l.With(args...)} }

type nopLogger struct{}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (n nopLogger) With(...any) Logger { return n }
