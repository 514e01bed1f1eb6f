package logging

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWriterIsStderr(t *testing.T) {
	s := NewSimpleLogSink(nil, DEBUG, false)
	assert.Equal(t, os.Stderr, s.writer)
}

func TestEnabledRespectsMinVerbosity(t *testing.T) {
	s := NewSimpleLogSink(&bytes.Buffer{}, DEBUG, false)
	assert.True(t, s.Enabled(INFO))
	assert.True(t, s.Enabled(DEBUG))
	assert.False(t, s.Enabled(TRACE))
}

func TestInfoLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSimpleLogSink(buf, DEBUG, false)
	s.Info(INFO, "hello world", "key", "value")
	out := buf.String()

	assert.Contains(t, out, "[INFO] hello world")
	assert.Contains(t, out, "key: value")
}

func TestInfoSuppressedAboveMinVerbosity(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSimpleLogSink(buf, INFO, false)
	s.Info(DEBUG, "too verbose")
	assert.Zero(t, buf.Len())
}

func TestErrorLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSimpleLogSink(buf, INFO, false)
	s.Error(errors.New("sample error"), "something broke", "context", "testing")
	out := buf.String()

	assert.Contains(t, out, "[ERROR] something broke")
	assert.Contains(t, out, "context: testing")
	assert.Contains(t, out, "error: sample error")
}

func TestColorDisabledProducesPlainLabels(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSimpleLogSink(buf, DEBUG, false)
	s.Info(INFO, "plain")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestWithNamePrefixesMessages(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSimpleLogSink(buf, DEBUG, false)
	s.WithName("volume").Info(INFO, "scanning")
	assert.Contains(t, buf.String(), "[volume] scanning")
}

func TestChainedWithName(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSimpleLogSink(buf, DEBUG, false)
	chain := s.WithName("rrfs").WithName("susp").(*SimpleLogSink)
	chain.Info(INFO, "chained")
	assert.Contains(t, buf.String(), "[rrfs.susp] chained")
}

func TestDerivedSinksKeepSettings(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSimpleLogSink(buf, TRACE, true)
	d := s.V(TRACE).(*SimpleLogSink)
	assert.Equal(t, TRACE, d.minVerbosity)
	assert.True(t, d.useColor)

	d2 := s.WithValues("k", "v").(*SimpleLogSink)
	d2.Info(TRACE, "carried")
	assert.Contains(t, buf.String(), "k: v")
}

func TestNonStringKeyGetsPlaceholder(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSimpleLogSink(buf, DEBUG, false)
	s.Info(INFO, "non-string key", 123, "value")
	assert.Contains(t, buf.String(), "key0: value")
}

func TestInitSetsCallDepth(t *testing.T) {
	s := NewSimpleLogSink(&bytes.Buffer{}, DEBUG, false)
	s.Init(logr.RuntimeInfo{CallDepth: 5})
	assert.Equal(t, 5, s.callDepth)
}

func TestNewSimpleLoggerRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewSimpleLogger(buf, TRACE, false)
	require.NotNil(t, logger.GetSink())

	logger.V(TRACE).Info("deep trace", "offset", 2048)
	out := buf.String()
	assert.Contains(t, out, "[TRACE] deep trace")
	assert.Contains(t, out, "offset: 2048")
}
