package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestLogsAtOrAboveLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelWarn)
	log.Info("should not appear")
	assert.Empty(t, buf.String())

	log.Warn("should appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestWithStacktraceIncludesStack(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo)
	err := errors.New("boom")
	log.WithStacktrace(err).Error("failed")
	assert.Contains(t, buf.String(), "boom")
	assert.Contains(t, buf.String(), "stacktrace")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	assert.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	_, err = ParseLevel("bogus")
	assert.Error(t, err)
}
