// Package chainlog provides the console narration cmd/* programs use
// to report progress: a thin wrapper over the standard library's
// log.Logger writing timestamped lines to stderr, distinct from
// returned errors (which stay error values all the way up per
// internal/bitcoinerrors).
package chainlog

import (
	"io"
	"log"
	"os"
)

// Logger narrates program progress; it never replaces an error
// return, only reports what a cmd/* tool is doing.
type Logger struct {
	*log.Logger
}

// New constructs a Logger prefixed with name, writing to w.
func New(name string, w io.Writer) *Logger {
	return &Logger{log.New(w, "["+name+"] ", log.LstdFlags)}
}

// Default constructs a Logger prefixed with name, writing to stderr.
func Default(name string) *Logger {
	return New(name, os.Stderr)
}

// Infof logs a progress message.
func (l *Logger) Infof(format string, args ...any) {
	l.Printf(format, args...)
}

// Fatalf logs a message and exits the process with status 1.
func (l *Logger) Fatalf(format string, args ...any) {
	l.Logger.Fatalf(format, args...)
}
