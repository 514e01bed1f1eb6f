package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
)

var (
	infoColor  = color.New(color.FgGreen).SprintFunc()
	debugColor = color.New(color.FgCyan).SprintFunc()
	traceColor = color.New(color.FgYellow).SprintFunc()
	errorColor = color.New(color.FgRed).SprintFunc()
)

// SimpleLogSink is a human-readable logr.LogSink for the CLI binaries:
// one line per message with a colored severity label, key/value pairs
// indented beneath it. Color is explicit via useColor rather than
// inferred from the writer, so callers can gate it on a terminal check
// (see cmd/rrfsinfo).
type SimpleLogSink struct {
	writer       io.Writer
	minVerbosity int
	name         string
	keyValues    []interface{}
	mutex        sync.Mutex
	callDepth    int
	useColor     bool
}

// NewSimpleLogSink creates a new SimpleLogSink. A nil writer defaults to
// os.Stderr; minVerbosity is the highest logr V-level that still logs.
func NewSimpleLogSink(writer io.Writer, minVerbosity int, useColor bool) *SimpleLogSink {
	if writer == nil {
		writer = os.Stderr
	}
	return &SimpleLogSink{
		writer:       writer,
		minVerbosity: minVerbosity,
		useColor:     useColor,
	}
}

// derive copies the sink for the WithValues/WithName/V family, which
// must never share mutable state with the parent.
func (s *SimpleLogSink) derive() *SimpleLogSink {
	return &SimpleLogSink{
		writer:       s.writer,
		minVerbosity: s.minVerbosity,
		name:         s.name,
		keyValues:    append([]interface{}{}, s.keyValues...),
		callDepth:    s.callDepth,
		useColor:     s.useColor,
	}
}

// Init records runtime information supplied by logr.
func (s *SimpleLogSink) Init(info logr.RuntimeInfo) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.callDepth = info.CallDepth
}

// Enabled reports whether level is within the sink's verbosity.
func (s *SimpleLogSink) Enabled(level int) bool {
	return level <= s.minVerbosity
}

// Info logs a non-error message with key-value pairs.
func (s *SimpleLogSink) Info(level int, msg string, keysAndValues ...interface{}) {
	if !s.Enabled(level) {
		return
	}
	s.log(false, level, msg, keysAndValues...)
}

// Error logs an error message with key-value pairs.
func (s *SimpleLogSink) Error(err error, msg string, keysAndValues ...interface{}) {
	allKeysAndValues := append(keysAndValues, "error", err)
	s.log(true, 0, msg, allKeysAndValues...)
}

// WithValues returns a sink that prepends key-value pairs to every
// message.
func (s *SimpleLogSink) WithValues(keysAndValues ...interface{}) logr.LogSink {
	d := s.derive()
	d.keyValues = append(d.keyValues, keysAndValues...)
	return d
}

// WithName returns a sink whose messages carry a dotted name prefix.
func (s *SimpleLogSink) WithName(name string) logr.LogSink {
	d := s.derive()
	if d.name != "" {
		d.name = fmt.Sprintf("%s.%s", d.name, name)
	} else {
		d.name = name
	}
	return d
}

// V returns a sink for the given verbosity level. The level itself is
// carried by logr and passed back through Info, so the derived sink is
// just a copy.
func (s *SimpleLogSink) V(level int) logr.LogSink {
	return s.derive()
}

// label renders the severity tag, colored only when the sink was built
// with useColor.
func (s *SimpleLogSink) label(isError bool, level int) string {
	var text string
	var paint func(a ...interface{}) string

	switch {
	case isError:
		text, paint = "[ERROR]", errorColor
	case level == INFO:
		text, paint = "[INFO]", infoColor
	case level == DEBUG:
		text, paint = "[DEBUG]", debugColor
	case level == TRACE:
		text, paint = "[TRACE]", traceColor
	default:
		return fmt.Sprintf("[LEVEL %d]", level)
	}

	if s.useColor {
		return paint(text)
	}
	return text
}

// log formats and writes one message under the sink's mutex.
func (s *SimpleLogSink) log(isError bool, level int, msg string, keysAndValues ...interface{}) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.name != "" {
		msg = fmt.Sprintf("[%s] %s", s.name, msg)
	}
	fmt.Fprintf(s.writer, "%s %s\n", s.label(isError, level), msg)

	pairs := append(append([]interface{}{}, s.keyValues...), keysAndValues...)
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			key = fmt.Sprintf("key%d", i/2)
		}
		fmt.Fprintf(s.writer, "  %s: %v\n", key, pairs[i+1])
	}
}

// NewSimpleLogger wraps a SimpleLogSink in a logr.Logger. A nil writer
// defaults to os.Stderr.
func NewSimpleLogger(writer io.Writer, minVerbosity int, useColor bool) logr.Logger {
	return logr.New(NewSimpleLogSink(writer, minVerbosity, useColor))
}
