package config

import (
	"context"
	"math"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/dshills/dabbrev/internal/config/loader"
	"github.com/dshills/dabbrev/internal/config/watcher"
	"github.com/dshills/dabbrev/internal/logger"
)

// DefaultEnvPrefix is the prefix of environment overrides.
const DefaultEnvPrefix = "DABBREV_"

// ReloadFunc is called after the configuration was reloaded from path.
type ReloadFunc func(c *Config, path string)

// Config provides unified access to the dabbrev configuration.
type Config struct {
	mu sync.RWMutex

	// data is the merged configuration tree.
	data map[string]any

	path      string
	envPrefix string
	environ   bool
	watch     bool

	watcher  *watcher.Watcher
	onReload []ReloadFunc
	log      *logger.Logger
}

// Option configures a Config instance.
type Option func(*Config)

// WithPath sets the config file. An empty path loads defaults and
// environment only.
func WithPath(path string) Option {
	return func(c *Config) { c.path = path }
}

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) { c.envPrefix = prefix }
}

// WithoutEnvironment skips the environment layer.
func WithoutEnvironment() Option {
	return func(c *Config) { c.environ = false }
}

// WithWatcher enables file watching for live reload.
func WithWatcher(enable bool) Option {
	return func(c *Config) { c.watch = enable }
}

// WithLogger sets the logger for load and reload messages.
func WithLogger(l *logger.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a Config holding only the defaults. Call Load to read the
// file and environment.
func New(opts ...Option) *Config {
	c := &Config{
		data:      defaultConfig(),
		envPrefix: DefaultEnvPrefix,
		environ:   true,
		log:       logger.Null(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent("config")
	return c
}

// Path returns the config file path, if any.
func (c *Config) Path() string {
	return c.path
}

// Load reads all layers and, if enabled, starts watching the file.
func (c *Config) Load(_ context.Context) error {
	data, err := c.build()
	if err != nil {
		return err
	}

	if err := (&Config{data: data}).Validate(); err != nil {
		return errors.WithHint(err, "fix the setting in "+c.describeSource())
	}

	c.mu.Lock()
	c.data = data
	c.mu.Unlock()

	if c.watch && c.path != "" && c.watcher == nil {
		w, err := watcher.New(watcher.WithLogger(c.log))
		if err != nil {
			return err
		}
		if err := w.Watch(c.path); err != nil {
			_ = w.Close()
			return err
		}
		w.OnChange(c.handleFileChange)
		c.watcher = w
	}

	c.log.Debug("configuration loaded from %s", c.describeSource())
	return nil
}

// build merges defaults, file and environment into a new tree.
func (c *Config) build() (map[string]any, error) {
	data := defaultConfig()

	if c.path != "" {
		fl, err := loader.ForPath(c.path)
		if err != nil {
			return nil, err
		}
		fileData, err := fl.Load()
		if err != nil {
			return nil, errors.WithHint(
				errors.Wrapf(err, "load config %s", c.path),
				"check the file's syntax",
			)
		}
		data = loader.DeepMerge(data, fileData)
	}

	if c.environ {
		envData, err := loader.NewEnvLoader(c.envPrefix).Load()
		if err != nil {
			return nil, errors.Wrap(err, "load environment")
		}
		data = loader.DeepMerge(data, envData)
	}

	return data, nil
}

func (c *Config) describeSource() string {
	if c.path == "" {
		return "the environment"
	}
	return filepath.Base(c.path)
}

// OnReload registers fn to run after every successful reload.
func (c *Config) OnReload(fn ReloadFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReload = append(c.onReload, fn)
}

// Reload re-reads every layer. On failure the previous configuration is
// kept.
func (c *Config) Reload() error {
	data, err := c.build()
	if err != nil {
		return err
	}

	if err := (&Config{data: data}).Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	c.data = data
	callbacks := append([]ReloadFunc(nil), c.onReload...)
	c.mu.Unlock()

	c.log.Info("configuration reloaded from %s", c.describeSource())
	for _, fn := range callbacks {
		fn(c, c.path)
	}
	return nil
}

// handleFileChange reloads the configuration after the file changed.
func (c *Config) handleFileChange(event watcher.Event) {
	if err := c.Reload(); err != nil {
		c.log.WithError(err).Warn("reload after %s of %s failed", event.Op, event.Path)
	}
}

// Close stops watching the config file.
func (c *Config) Close() error {
	c.mu.Lock()
	w := c.watcher
	c.watcher = nil
	c.mu.Unlock()

	if w != nil {
		return w.Close()
	}
	return nil
}

// Get returns the value at the given path from the merged configuration.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.GetByPath(c.data, path)
}

// Set overrides a single setting in memory.
func (c *Config) Set(path string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	loader.SetByPath(c.data, path, value)
}

// GetString returns a string setting.
func (c *Config) GetString(path string) (string, error) {
	val, ok := c.Get(path)
	if !ok {
		return "", errors.Wrap(ErrSettingNotFound, path)
	}
	s, ok := val.(string)
	if !ok {
		return "", mismatch(path, "string", val)
	}
	return s, nil
}

// GetInt returns an integer setting. Whole floats are accepted.
func (c *Config) GetInt(path string) (int, error) {
	val, ok := c.Get(path)
	if !ok {
		return 0, errors.Wrap(ErrSettingNotFound, path)
	}
	switch n := val.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n == math.Trunc(n) {
			return int(n), nil
		}
	}
	return 0, mismatch(path, "int", val)
}

// GetBool returns a boolean setting.
func (c *Config) GetBool(path string) (bool, error) {
	val, ok := c.Get(path)
	if !ok {
		return false, errors.Wrap(ErrSettingNotFound, path)
	}
	b, ok := val.(bool)
	if !ok {
		return false, mismatch(path, "bool", val)
	}
	return b, nil
}

// Merged returns a deep copy of the merged configuration.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.Clone(c.data)
}

func mismatch(path, want string, got any) error {
	return errors.Wrapf(ErrTypeMismatch, "%s: want %s, got %T", path, want, got)
}

func invalid(path string, val any) error {
	return errors.Wrapf(ErrInvalidValue, "%s = %v", path, val)
}

// defaultConfig returns the default configuration values.
func defaultConfig() map[string]any {
	return map[string]any{
		"logging": map[string]any{
			"level":  "info",
			"format": "text",
		},
		"editor": map[string]any{
			"tabWidth":   4,
			"lineEnding": "auto",
			"undoLevels": 1000,
		},
		"view": map[string]any{
			"width":       80,
			"height":      24,
			"lineNumbers": false,
		},
		"dabbrev": map[string]any{
			"enabled": true,
			"metrics": false,
		},
		"keymap": map[string]any{
			"alt+/":  "emacs.dabbrevExpand",
			"ctrl+l": "view.centerCursor",
			"alt+l":  "view.centerOtherEditor",
			"alt+s":  "emacs.selectLine",
			"ctrl+s": "editor.save",
			"ctrl+z": "editor.undo",
			"ctrl+y": "editor.redo",
		},
	}
}
