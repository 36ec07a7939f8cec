package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger(min Level) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &Logger{out: buf, MinLevel: min}, buf
}

func TestLogFormat(t *testing.T) {
	log, buf := newTestLogger(DEBUG)
	log.Info("translating %s", "foo.ts")
	assert.Equal(t, "INFO - translating foo.ts\n", buf.String())
}

func TestLogLevelFiltering(t *testing.T) {
	log, buf := newTestLogger(INFO)
	log.Debug("should not appear")
	log.Warn("should appear")
	assert.Equal(t, "WARN - should appear\n", buf.String())
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", DEBUG.String())
	assert.Equal(t, "INFO", INFO.String())
	assert.Equal(t, "WARN", WARN.String())
	assert.Equal(t, "ERROR", ERROR.String())
}
