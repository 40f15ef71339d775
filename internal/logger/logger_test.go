package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.level.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"WARNING", LevelWarn},
		{"error", LevelError},
		{"unknown", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLevel(tt.input), "input %q", tt.input)
	}

	assert.True(t, ValidLevel("Warn"))
	assert.False(t, ValidLevel("verbose"))
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelWarn, Output: &buf, Prefix: "test"})

	log.Debug("hidden debug")
	log.Info("hidden info")
	log.Warn("shown %d", 42)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 42")
	assert.Contains(t, out, "app=test")
	assert.True(t, log.Enabled(LevelError))
	assert.False(t, log.Enabled(LevelDebug))
}

func TestLoggerFieldsAndComponent(t *testing.T) {
	var buf bytes.Buffer
	root := New(Config{Level: LevelDebug, Output: &buf})

	child := root.WithComponent("dabbrev").WithFields(map[string]any{"editor": "e1"})
	child.Debug("expanded")

	out := buf.String()
	assert.Contains(t, out, "component=dabbrev")
	assert.Contains(t, out, "editor=e1")

	// Deriving must not leak fields back into the parent.
	buf.Reset()
	root.Info("plain")
	assert.NotContains(t, buf.String(), "component=")
}

func TestLoggerSetLevelPropagates(t *testing.T) {
	var buf bytes.Buffer
	root := New(Config{Level: LevelError, Output: &buf})
	child := root.WithComponent("x")

	child.Info("before")
	root.SetLevel(LevelInfo)
	child.Info("after")

	out := buf.String()
	assert.NotContains(t, out, "before")
	assert.Contains(t, out, "after")
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelInfo, Output: &buf, Format: FormatJSON})

	log.WithError(errors.New("boom")).Error("failed")

	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &line))
	assert.Equal(t, "failed", line["msg"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "error", line["level"])
}

func TestNullLogger(t *testing.T) {
	log := Null()
	log.Error("nothing")
	assert.False(t, log.Enabled(LevelError))
}
