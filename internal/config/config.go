// Package config loads the optional TOML configuration file of the command
// line tools.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/moffa90/go-tdsbackup/bridge"
	"github.com/moffa90/go-tdsbackup/retry"
)

// Config is the tool configuration after defaults and file values are merged.
type Config struct {
	GPIBAddress       int
	BaudRate          int
	BringUpTimeout    time.Duration
	TransferTimeout   time.Duration
	BridgeReadTimeout time.Duration
	BringUpRetry      retry.Policy
	ChunkRetry        retry.Policy
}

type retryTable struct {
	MaxAttempts  int     `toml:"max_attempts"`
	InitialDelay string  `toml:"initial_delay"`
	MaxDelay     string  `toml:"max_delay"`
	Multiplier   float64 `toml:"multiplier"`
}

type fileConfig struct {
	GPIBAddress         int        `toml:"gpib_address"`
	BaudRate            int        `toml:"baud_rate"`
	BringUpTimeout      string     `toml:"bringup_timeout"`
	TransferTimeout     string     `toml:"transfer_timeout"`
	BridgeReadTimeoutMS int64      `toml:"bridge_read_timeout_ms"`
	BringUpRetry        retryTable `toml:"bringup_retry"`
	ChunkRetry          retryTable `toml:"chunk_retry"`
}

// Default returns the built-in configuration.
func Default() Config {
	b := bridge.DefaultConfig()
	return Config{
		GPIBAddress:       b.GPIBAddress,
		BaudRate:          b.BaudRate,
		BringUpTimeout:    b.BringUpReadTimeout,
		TransferTimeout:   b.TransferReadTimeout,
		BridgeReadTimeout: b.BridgeReadTimeout,
		BringUpRetry:      b.BringUp,
		ChunkRetry:        retry.Default(),
	}
}

// Load reads the file at path over Default. Keys absent from the file keep
// their default value.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("gpib_address") {
		if raw.GPIBAddress < 0 || raw.GPIBAddress > 30 {
			return Config{}, fmt.Errorf("gpib_address %d is out of range: valid range is 0-30", raw.GPIBAddress)
		}
		cfg.GPIBAddress = raw.GPIBAddress
	}

	if meta.IsDefined("baud_rate") {
		if raw.BaudRate <= 0 {
			return Config{}, fmt.Errorf("baud_rate must be positive, got %d", raw.BaudRate)
		}
		cfg.BaudRate = raw.BaudRate
	}

	if meta.IsDefined("bringup_timeout") {
		d, err := parseDuration("bringup_timeout", raw.BringUpTimeout)
		if err != nil {
			return Config{}, err
		}
		if d == 0 {
			return Config{}, fmt.Errorf("bringup_timeout must be positive, got %v", d)
		}
		cfg.BringUpTimeout = d
	}

	if meta.IsDefined("transfer_timeout") {
		d, err := parseDuration("transfer_timeout", raw.TransferTimeout)
		if err != nil {
			return Config{}, err
		}
		if d == 0 {
			return Config{}, fmt.Errorf("transfer_timeout must be positive, got %v", d)
		}
		cfg.TransferTimeout = d
	}

	if meta.IsDefined("bridge_read_timeout_ms") {
		if raw.BridgeReadTimeoutMS <= 0 {
			return Config{}, fmt.Errorf("bridge_read_timeout_ms must be positive, got %d", raw.BridgeReadTimeoutMS)
		}
		cfg.BridgeReadTimeout = time.Duration(raw.BridgeReadTimeoutMS) * time.Millisecond
	}

	if err := applyRetry(meta, "bringup_retry", raw.BringUpRetry, &cfg.BringUpRetry); err != nil {
		return Config{}, err
	}
	if err := applyRetry(meta, "chunk_retry", raw.ChunkRetry, &cfg.ChunkRetry); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyRetry(meta toml.MetaData, table string, raw retryTable, p *retry.Policy) error {
	if meta.IsDefined(table, "max_attempts") {
		if raw.MaxAttempts < 0 {
			return fmt.Errorf("%s.max_attempts must not be negative, got %d", table, raw.MaxAttempts)
		}
		p.MaxAttempts = raw.MaxAttempts
	}
	if meta.IsDefined(table, "initial_delay") {
		d, err := parseDuration(table+".initial_delay", raw.InitialDelay)
		if err != nil {
			return err
		}
		p.InitialDelay = d
	}
	if meta.IsDefined(table, "max_delay") {
		d, err := parseDuration(table+".max_delay", raw.MaxDelay)
		if err != nil {
			return err
		}
		p.MaxDelay = d
	}
	if meta.IsDefined(table, "multiplier") {
		p.Multiplier = raw.Multiplier
	}
	return nil
}

func parseDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %v", key, d)
	}
	return d, nil
}

// BridgeOptions returns the bridge settings held by c.
func (c Config) BridgeOptions() []bridge.Option {
	return []bridge.Option{
		bridge.WithGPIBAddress(c.GPIBAddress),
		bridge.WithBaudRate(c.BaudRate),
		bridge.WithBringUpReadTimeout(c.BringUpTimeout),
		bridge.WithTransferReadTimeout(c.TransferTimeout),
		bridge.WithBridgeReadTimeout(c.BridgeReadTimeout),
		bridge.WithBringUpPolicy(c.BringUpRetry),
	}
}
