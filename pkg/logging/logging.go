// Package logging provides the logr.Logger wrapper used throughout rrfs.
// The core packages never log to a global logger; a logr.Logger is passed
// in explicitly wherever one is needed, and callers that don't care can
// pass logr.Discard().
package logging

import (
	"github.com/go-logr/logr"
)

// Verbosity levels used with logr.Logger.V(). INFO is always enabled;
// DEBUG and TRACE are progressively noisier.
const (
	INFO  = 0
	DEBUG = 1
	TRACE = 2
)

// NewLogger creates a new Logger instance with the given configuration
func NewLogger(log logr.Logger) *Logger {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Logger{log: log}
}

// DefaultLogger returns a Logger that discards everything.
func DefaultLogger() *Logger {
	return &Logger{log: logr.Discard()}
}

// Logger is a struct that wraps the logr.Logger interface.
type Logger struct {
	log logr.Logger
}

// Base returns the underlying logr.Logger, for handing to collaborators
// that accept one directly.
func (l *Logger) Base() logr.Logger {
	return l.log
}

// Log methods (minimizing footprint in the rest of the library)
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.V(DEBUG).Info(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Info(msg, keysAndValues...)
}

func (l *Logger) Trace(msg string, keysAndValues ...interface{}) {
	l.log.V(TRACE).Info(msg, keysAndValues...)
}

func (l *Logger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(err, msg, keysAndValues...)
}
