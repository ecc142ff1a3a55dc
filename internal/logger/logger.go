// Package logger builds the application-wide zerolog logger.
//
// Output fans out to two sinks: a human-oriented console writer on stderr
// (colorized when stderr is a terminal) and an optional plain-text log file.
// The file sink always records at debug level so support bundles stay useful
// regardless of the console verbosity.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Options control logger construction.
type Options struct {
	// Level is the console log level: trace, debug, info, warn, or error.
	Level string
	// File is the log file path. Empty disables the file sink.
	File string
	// NoColor disables ANSI colors even on a terminal.
	NoColor bool
	// Console overrides the console sink, used by tests. Defaults to stderr.
	Console io.Writer
}

// New constructs the logger and returns it together with a close function
// for the file sink. The close function is always non-nil.
func New(opts Options) (zerolog.Logger, func(), error) {
	level, err := zerolog.ParseLevel(normalizeLevel(opts.Level))
	if err != nil {
		return zerolog.Nop(), func() {}, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	cw := zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.RFC3339,
		NoColor:    opts.NoColor || !stderrIsTerminal(console),
	}
	writers := []io.Writer{levelWriter{Writer: cw, min: level}}

	closeFn := func() {}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return zerolog.Nop(), func() {}, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), func() {}, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, f)
		closeFn = func() { _ = f.Close() }
	}

	log := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(zerolog.TraceLevel).
		With().Timestamp().Logger()
	return log, closeFn, nil
}

func normalizeLevel(s string) string {
	if s == "" {
		return "info"
	}
	return s
}

func stderrIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// levelWriter drops events below min for one sink while the file sink keeps
// everything. zerolog's MultiLevelWriter consults WriteLevel per writer.
type levelWriter struct {
	io.Writer
	min zerolog.Level
}

func (w levelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < w.min {
		return len(p), nil
	}
	return w.Writer.Write(p)
}
