// Package logging provides a small debug-gated logger for the interpreter
// and its CLI driver: quiet by default, verbose when a host or the CLI's
// -trace flag turns debug output on.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger writes leveled, debug-gated messages to a pluggable sink. The zero
// value is not usable; construct one with New.
type Logger struct {
	debug  bool
	prefix string
	out    *log.Logger
}

// New builds a Logger writing to w with the given prefix, e.g.
// "[lapis] ". Debug output is off until SetDebug(true).
func New(w io.Writer, prefix string) *Logger {
	return &Logger{out: log.New(w, prefix, log.LstdFlags)}
}

// Default returns a Logger writing to stderr under the "[lapis] " prefix,
// for callers that don't need a custom sink.
func Default() *Logger {
	return New(os.Stderr, "[lapis] ")
}

// SetDebug toggles whether Debugf/Tracef actually write anything.
func (l *Logger) SetDebug(enabled bool) { l.debug = enabled }

// Debug reports whether debug-level output is currently enabled.
func (l *Logger) Debug() bool { return l.debug }

// SetOutput redirects the underlying sink.
func (l *Logger) SetOutput(w io.Writer) { l.out.SetOutput(w) }

// Debugf logs format/items if debug output is enabled.
func (l *Logger) Debugf(format string, items ...any) {
	if l.debug {
		l.out.Printf(format, items...)
	}
}

// Tracef logs a sender-tagged message if debug output is enabled, mirroring
// the sender/format split the teacher's own verbose logging helper used.
func (l *Logger) Tracef(sender, format string, items ...any) {
	if l.debug {
		l.out.Printf("[%s] %s", sender, fmt.Sprintf(format, items...))
	}
}

// Errorf always logs, regardless of the debug flag — parse/runtime errors
// that should reach the user even when tracing is off.
func (l *Logger) Errorf(format string, items ...any) {
	l.out.Printf(format, items...)
}
