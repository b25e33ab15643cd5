package memdump

import "github.com/moffa90/go-tdsbackup/retry"

// Config holds the reader configuration.
type Config struct {
	// ProgressCallback is called during Transfer to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// Retry governs how short reads are retried.
	// MaxAttempts of zero retries until the chunk arrives.
	Retry retry.Policy
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Retry: retry.Default(),
	}
}

// Option is a functional option for configuring the Reader.
type Option func(*Config)

// WithProgressCallback sets a callback function to track transfer progress.
//
// Example:
//
//	r := memdump.New(session,
//	    memdump.WithProgressCallback(func(p memdump.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the reader operations.
//
// Example:
//
//	r := memdump.New(session, memdump.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithRetryPolicy sets the short read retry policy.
//
// Example:
//
//	// retry forever, like the bridge firmware expects
//	r := memdump.New(session, memdump.WithRetryPolicy(retry.Unbounded()))
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Config) {
		c.Retry = p
	}
}

// WithRetries keeps the default backoff but limits the number of attempts
// per chunk. Zero means unlimited.
//
// Example:
//
//	r := memdump.New(session, memdump.WithRetries(5))
func WithRetries(attempts int) Option {
	return func(c *Config) {
		if attempts >= 0 {
			c.Retry.MaxAttempts = attempts
		}
	}
}
