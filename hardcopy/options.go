package hardcopy

import (
	"time"

	"github.com/moffa90/go-tdsbackup/bridge"
)

// DefaultSize is the size of a 640x480 monochrome BMP screen dump:
// a 62-byte header and palette followed by 38400 bytes of pixels.
const DefaultSize = 38462

// DefaultFormat is the image format requested from the instrument.
const DefaultFormat = "bmp"

// Config holds the capture configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger bridge.Logger

	// Size is the number of bytes the instrument sends
	Size int

	// Format is the argument of the HARDCOPY:FORMAT command
	Format string
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Size:   DefaultSize,
		Format: DefaultFormat,
	}
}

// Option is a functional option for configuring a capture.
type Option func(*Config)

// WithLogger sets a logger for the capture.
func WithLogger(logger bridge.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithSize sets the number of bytes to read. Use it when the instrument is
// set up for a format other than a monochrome BMP.
//
// Example:
//
//	n, err := hardcopy.Capture(ctx, s, f, hardcopy.WithSize(153718))
func WithSize(size int) Option {
	return func(c *Config) {
		if size > 0 {
			c.Size = size
		}
	}
}

// WithFormat sets the image format requested from the instrument.
func WithFormat(format string) Option {
	return func(c *Config) {
		if format != "" {
			c.Format = format
		}
	}
}

// BridgeOptions returns the bridge settings a screen capture expects: no
// interface clear, no EOS handling and a bridge read timeout long enough for
// the instrument to render the image.
//
// Example:
//
//	opts := append(hardcopy.BridgeOptions(), bridge.WithGPIBAddress(addr))
//	s, err := bridge.Open("/dev/ttyUSB0", opts...)
func BridgeOptions() []bridge.Option {
	return []bridge.Option{
		bridge.WithInterfaceClear(false),
		bridge.WithEOS(bridge.EOSUnset),
		bridge.WithBridgeReadTimeout(10 * time.Second),
		bridge.WithTransferReadTimeout(15 * time.Second),
	}
}
