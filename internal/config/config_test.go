package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/dabbrev/internal/config/loader"
	"github.com/dshills/dabbrev/internal/logger"
)

const testPrefix = "DABBREVTEST_"

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	c := New(WithoutEnvironment())
	require.NoError(t, c.Load(context.Background()))

	assert.Equal(t, LoggingConfig{Level: "info", Format: "text"}, c.Logging())
	assert.Equal(t, EditorConfig{TabWidth: 4, LineEnding: "auto", UndoLevels: 1000}, c.Editor())
	assert.Equal(t, ViewConfig{Width: 80, Height: 24}, c.View())
	assert.Equal(t, DabbrevConfig{Enabled: true}, c.Dabbrev())
	assert.Equal(t, "emacs.dabbrevExpand", c.Keymap()["alt+/"])
	assert.Equal(t, "editor.undo", c.Keymap()["ctrl+z"])
}

func TestLoadTOMLWithEnvOverride(t *testing.T) {
	path := writeConfig(t, "dabbrev.toml", `
[logging]
level = "warn"
format = "json"

[view]
height = 40

[keymap]
"ctrl+e" = "emacs.dabbrevExpand"
`)
	t.Setenv(testPrefix+"LOGGING_LEVEL", "debug")
	t.Setenv(testPrefix+"DABBREV_METRICS", "true")

	c := New(WithPath(path), WithEnvPrefix(testPrefix))
	require.NoError(t, c.Load(context.Background()))

	assert.Equal(t, "debug", c.Logging().Level)
	assert.Equal(t, logger.LevelDebug, c.Logging().LoggerLevel())
	assert.Equal(t, logger.FormatJSON, c.Logging().LoggerFormat())
	assert.Equal(t, 40, c.View().Height)
	assert.Equal(t, 80, c.View().Width)
	assert.True(t, c.Dabbrev().Metrics)

	keys := c.Keymap()
	assert.Equal(t, "emacs.dabbrevExpand", keys["ctrl+e"])
	assert.Equal(t, "view.centerCursor", keys["ctrl+l"], "defaults survive the merge")
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "dabbrev.yml", `
editor:
  tabWidth: 8
  lineEnding: crlf
dabbrev:
  enabled: false
`)

	c := New(WithPath(path), WithoutEnvironment())
	require.NoError(t, c.Load(context.Background()))

	assert.Equal(t, EditorConfig{TabWidth: 8, LineEnding: "crlf", UndoLevels: 1000}, c.Editor())
	assert.Len(t, c.Editor().BufferOptions(), 2)
	assert.False(t, c.Dabbrev().Enabled)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c := New(WithPath(filepath.Join(t.TempDir(), "absent.toml")), WithoutEnvironment())
	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, 24, c.View().Height)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		is      error
	}{
		{"unsupported extension", "config.json", "{}", loader.ErrUnsupportedFormat},
		{"invalid level", "config.toml", "[logging]\nlevel = \"loud\"\n", ErrInvalidValue},
		{"bad tab width", "config.toml", "[editor]\ntabWidth = 0\n", ErrInvalidValue},
		{"bad line ending", "config.yaml", "editor:\n  lineEnding: nel\n", ErrInvalidValue},
		{"bad undo levels", "config.toml", "[editor]\nundoLevels = 0\n", ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(WithPath(writeConfig(t, tt.file, tt.content)), WithoutEnvironment())
			err := c.Load(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.is), "got %v", err)
			assert.NotEmpty(t, errors.GetAllHints(err))
		})
	}
}

func TestLoadSyntaxErrorHasHint(t *testing.T) {
	c := New(WithPath(writeConfig(t, "config.toml", "[logging\n")), WithoutEnvironment())
	err := c.Load(context.Background())
	require.Error(t, err)

	var perr *loader.ParseError
	assert.True(t, errors.As(err, &perr))
	assert.Contains(t, errors.GetAllHints(err), "check the file's syntax")
}

func TestTypedGetters(t *testing.T) {
	c := New(WithoutEnvironment())
	c.Set("view.height", 12.0)
	c.Set("view.width", 12.5)

	n, err := c.GetInt("view.height")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	_, err = c.GetInt("view.width")
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	_, err = c.GetString("nope.missing")
	assert.True(t, errors.Is(err, ErrSettingNotFound))

	_, err = c.GetBool("logging.level")
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}

func TestMergedIsCopy(t *testing.T) {
	c := New(WithoutEnvironment())
	m := c.Merged()
	m["logging"].(map[string]any)["level"] = "error"
	assert.Equal(t, "info", c.Logging().Level)
}

func TestReloadKeepsPreviousOnError(t *testing.T) {
	path := writeConfig(t, "config.toml", "[view]\nheight = 30\n")
	c := New(WithPath(path), WithoutEnvironment())
	require.NoError(t, c.Load(context.Background()))

	var calls atomic.Int32
	c.OnReload(func(_ *Config, _ string) { calls.Add(1) })

	require.NoError(t, os.WriteFile(path, []byte("[view]\nheight = 0\n"), 0o644))
	assert.Error(t, c.Reload())
	assert.Equal(t, 30, c.View().Height)
	assert.Equal(t, int32(0), calls.Load())

	require.NoError(t, os.WriteFile(path, []byte("[view]\nheight = 50\n"), 0o644))
	require.NoError(t, c.Reload())
	assert.Equal(t, 50, c.View().Height)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcherReloads(t *testing.T) {
	path := writeConfig(t, "config.toml", "[logging]\nlevel = \"info\"\n")
	c := New(WithPath(path), WithoutEnvironment(), WithWatcher(true))
	require.NoError(t, c.Load(context.Background()))
	defer c.Close()

	reloaded := make(chan string, 4)
	c.OnReload(func(_ *Config, p string) { reloaded <- p })

	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"debug\"\n"), 0o644))

	select {
	case p := <-reloaded:
		assert.Equal(t, path, p)
	case <-time.After(3 * time.Second):
		t.Fatal("config was not reloaded")
	}
	assert.Equal(t, "debug", c.Logging().Level)
}
