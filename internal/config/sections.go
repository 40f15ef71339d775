package config

import (
	"fmt"

	"github.com/dshills/dabbrev/internal/config/loader"
	"github.com/dshills/dabbrev/internal/engine/buffer"
	"github.com/dshills/dabbrev/internal/logger"
)

// Section accessor methods return snapshot structs. Mutating the returned
// struct does not modify the underlying configuration.

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string

	// Format is text or json.
	Format string
}

// LoggerLevel returns Level as a logger.Level.
func (c LoggingConfig) LoggerLevel() logger.Level {
	return logger.ParseLevel(c.Level)
}

// LoggerFormat returns Format as a logger.Format.
func (c LoggingConfig) LoggerFormat() logger.Format {
	if c.Format == string(logger.FormatJSON) {
		return logger.FormatJSON
	}
	return logger.FormatText
}

// EditorConfig holds buffer settings.
type EditorConfig struct {
	// TabWidth is the display width of a tab.
	TabWidth int

	// LineEnding is "auto" (keep the file's own) or lf, crlf, cr.
	LineEnding string

	// UndoLevels bounds each document's undo history.
	UndoLevels int
}

// BufferOptions returns the buffer options these settings imply.
func (c EditorConfig) BufferOptions() []buffer.Option {
	opts := []buffer.Option{buffer.WithTabWidth(c.TabWidth)}
	if c.LineEnding != "" && c.LineEnding != "auto" {
		opts = append(opts, buffer.WithLineEnding(buffer.ParseLineEnding(c.LineEnding)))
	}
	return opts
}

// ViewConfig holds the viewport size used for new editors.
type ViewConfig struct {
	Width  int
	Height int

	// LineNumbers shows a line number gutter in the terminal editor.
	LineNumbers bool
}

// DabbrevConfig holds word-expansion settings.
type DabbrevConfig struct {
	// Enabled turns emacs.dabbrevExpand on or off.
	Enabled bool

	// Metrics records expansion outcomes.
	Metrics bool
}

// Logging returns the logging section.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{
		Level:  c.stringOr("logging.level", "info"),
		Format: c.stringOr("logging.format", "text"),
	}
}

// Editor returns the editor section.
func (c *Config) Editor() EditorConfig {
	return EditorConfig{
		TabWidth:   c.intOr("editor.tabWidth", 4),
		LineEnding: c.stringOr("editor.lineEnding", "auto"),
		UndoLevels: c.intOr("editor.undoLevels", 1000),
	}
}

// View returns the view section.
func (c *Config) View() ViewConfig {
	return ViewConfig{
		Width:       c.intOr("view.width", 80),
		Height:      c.intOr("view.height", 24),
		LineNumbers: c.boolOr("view.lineNumbers", false),
	}
}

// Dabbrev returns the dabbrev section.
func (c *Config) Dabbrev() DabbrevConfig {
	return DabbrevConfig{
		Enabled: c.boolOr("dabbrev.enabled", true),
		Metrics: c.boolOr("dabbrev.metrics", false),
	}
}

// Keymap returns the key to command bindings. Bindings whose value is not
// a string are skipped.
func (c *Config) Keymap() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]string)
	section, _ := loader.GetByPath(c.data, "keymap")
	m, _ := section.(map[string]any)
	for key, val := range m {
		if cmd, ok := val.(string); ok && cmd != "" {
			out[key] = cmd
		}
	}
	return out
}

// Validate checks that every setting holds a usable value.
func (c *Config) Validate() error {
	if lvl := c.Logging().Level; !logger.ValidLevel(lvl) {
		return invalid("logging.level", lvl)
	}
	switch f := c.Logging().Format; f {
	case "text", "json":
	default:
		return invalid("logging.format", f)
	}
	if w := c.Editor().TabWidth; w < 1 {
		return invalid("editor.tabWidth", w)
	}
	if n := c.Editor().UndoLevels; n < 1 {
		return invalid("editor.undoLevels", n)
	}
	switch le := c.Editor().LineEnding; le {
	case "auto", "lf", "crlf", "cr":
	default:
		return invalid("editor.lineEnding", le)
	}
	if v := c.View(); v.Width < 1 || v.Height < 1 {
		return invalid("view", fmt.Sprintf("%dx%d", v.Width, v.Height))
	}
	return nil
}

func (c *Config) stringOr(path, def string) string {
	if s, err := c.GetString(path); err == nil {
		return s
	}
	return def
}

func (c *Config) intOr(path string, def int) int {
	if n, err := c.GetInt(path); err == nil {
		return n
	}
	return def
}

func (c *Config) boolOr(path string, def bool) bool {
	if b, err := c.GetBool(path); err == nil {
		return b
	}
	return def
}
