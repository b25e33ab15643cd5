package bridge

import (
	"time"

	"github.com/moffa90/go-tdsbackup/retry"
)

// Config holds the session configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger Logger

	// BaudRate is the serial line speed used by Open
	BaudRate int

	// GPIBAddress is the primary address of the target instrument (0-30)
	GPIBAddress int

	// InterfaceClear sends ++ifc during bring-up
	InterfaceClear bool

	// EOS is the end-of-string mode configured during bring-up
	EOS EOSMode

	// BridgeReadTimeout is the bridge's own GPIB read timeout (++read_tmo_ms)
	BridgeReadTimeout time.Duration

	// BringUpReadTimeout is the host read timeout while waiting for the
	// bridge to answer ++ver
	BringUpReadTimeout time.Duration

	// TransferReadTimeout is the host read timeout once the bridge is up.
	// The bridge buffers a whole reply before relaying it, so this has to be
	// longer than BridgeReadTimeout.
	TransferReadTimeout time.Duration

	// BringUp bounds the ++ver liveness loop
	BringUp retry.Policy
}

// DefaultGPIBAddress is the factory GPIB address of the TDS scopes this tool targets.
const DefaultGPIBAddress = 29

// DefaultBaudRate is the serial speed of the AR488 firmware.
const DefaultBaudRate = 115200

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BaudRate:            DefaultBaudRate,
		GPIBAddress:         DefaultGPIBAddress,
		InterfaceClear:      true,
		EOS:                 EOSNone,
		BridgeReadTimeout:   3 * time.Second,
		BringUpReadTimeout:  1 * time.Second,
		TransferReadTimeout: 10 * time.Second,
		BringUp: retry.Policy{
			MaxAttempts:  60,
			InitialDelay: 0,
		},
	}
}

// Option is a functional option for configuring the Session.
type Option func(*Config)

// WithConfig replaces the whole configuration. Options that follow it still apply.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}

// WithLogger sets a logger for the session.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithBaudRate sets the serial speed used by Open.
func WithBaudRate(baud int) Option {
	return func(c *Config) {
		if baud > 0 {
			c.BaudRate = baud
		}
	}
}

// WithGPIBAddress sets the instrument address. Values outside 0-30 are ignored.
//
// Example:
//
//	s, err := bridge.Open("/dev/ttyUSB0", bridge.WithGPIBAddress(1))
func WithGPIBAddress(addr int) Option {
	return func(c *Config) {
		if addr >= 0 && addr <= 30 {
			c.GPIBAddress = addr
		}
	}
}

// WithInterfaceClear enables or disables the ++ifc step of bring-up.
func WithInterfaceClear(enabled bool) Option {
	return func(c *Config) {
		c.InterfaceClear = enabled
	}
}

// WithEOS sets the end-of-string mode. EOSUnset skips the ++eos step.
func WithEOS(mode EOSMode) Option {
	return func(c *Config) {
		c.EOS = mode
	}
}

// WithBridgeReadTimeout sets the bridge's GPIB read timeout.
func WithBridgeReadTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.BridgeReadTimeout = timeout
		}
	}
}

// WithBringUpReadTimeout sets the host read timeout used during bring-up.
func WithBringUpReadTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.BringUpReadTimeout = timeout
		}
	}
}

// WithTransferReadTimeout sets the host read timeout used after bring-up.
//
// Example:
//
//	s := bridge.New(port, bridge.WithTransferReadTimeout(20*time.Second))
func WithTransferReadTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.TransferReadTimeout = timeout
		}
	}
}

// WithBringUpPolicy sets the retry policy of the ++ver liveness loop.
// retry.Unbounded() waits for the bridge forever.
func WithBringUpPolicy(p retry.Policy) Option {
	return func(c *Config) {
		c.BringUp = p
	}
}
