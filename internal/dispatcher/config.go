package dispatcher

// Config holds dispatcher configuration options.
type Config struct {
	// RecoverFromPanic wraps handler execution in panic recovery.
	RecoverFromPanic bool

	// MaxRepeatCount limits the repeat count of an action.
	// Zero means no limit.
	MaxRepeatCount int
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		RecoverFromPanic: true,
		MaxRepeatCount:   10000,
	}
}

// WithPanicRecovery returns a copy of the config with panic recovery set.
func (c Config) WithPanicRecovery(recover bool) Config {
	c.RecoverFromPanic = recover
	return c
}

// WithMaxRepeatCount returns a copy of the config with the max repeat count set.
func (c Config) WithMaxRepeatCount(n int) Config {
	c.MaxRepeatCount = n
	return c
}
