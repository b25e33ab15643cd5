// tdsbackup dumps the memory of a Tektronix TDS oscilloscope through an
// AR488 USB-to-GPIB bridge.
//
// Usage: tdsbackup [OPTIONS] DEVICE OFFSET LENGTH FILE
//
// Example:
//
//	$> tdsbackup /dev/ttyUSB0 0x04000000 0x00400000 flash.bin
//	2021-03-02T21:14:05+01:00 INF bridge is alive version="AR488 GPIB controller, ver. 0.49.14, 02/03/2021"
//	2021-03-02T21:14:05+01:00 INF starting transfer chunks=4096 length=4194304 offset=0x04000000
//	[...]
//	2021-03-02T21:20:48+01:00 INF transfer complete bytes=4194304 chunks=4096 elapsed=6m43s retries=3
package main // import "github.com/moffa90/go-tdsbackup/cmd/tdsbackup"

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/moffa90/go-tdsbackup/bridge"
	"github.com/moffa90/go-tdsbackup/internal/config"
	"github.com/moffa90/go-tdsbackup/internal/logging"
	"github.com/moffa90/go-tdsbackup/memdump"
)

// progressEvery is the number of chunks between two progress records.
const progressEvery = 256

type cmdArgs struct {
	device string
	req    memdump.Request
	output string
}

type openFunc func(path string, baud int) (bridge.Port, error)

func main() {
	var (
		addr    = flag.Int("addr", -1, "GPIB address of the scope (0-30, default from config or 29)")
		baud    = flag.Int("baud", -1, "serial speed of the bridge (default from config or 115200)")
		cfgPath = flag.String("config", "", "path to a TOML configuration file")
		retries = flag.Int("retries", -1, "attempts per chunk before giving up, 0 retries forever (default from config or 16)")
		verbose = flag.Bool("v", false, "enable debug logging")
		quiet   = flag.Bool("q", false, "only log warnings and errors")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `tdsbackup dumps the memory of a Tektronix TDS oscilloscope through an AR488 USB-to-GPIB bridge.

Usage: tdsbackup [OPTIONS] DEVICE OFFSET LENGTH FILE

  DEVICE  the serial port on which the AR488 is available
  OFFSET  the address from which to start reading data
  LENGTH  the number of bytes to read, a multiple of 1024
  FILE    the name of the output file

OFFSET and LENGTH accept decimal and 0x-prefixed hexadecimal values.

Example:

 $> tdsbackup /dev/ttyUSB0 0x04000000 0x00400000 flash.bin

Options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	logger := logging.New(os.Stderr, logging.Options{Level: logLevel(*verbose, *quiet)})

	args, err := parseArgs(flag.Args())
	if err != nil {
		flag.Usage()
		logger.Fatal().Err(err).Msg("invalid arguments")
	}

	cfg, err := loadConfig(*cfgPath, *addr, *baud, *retries)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = run(ctx, cfg, args, bridge.OpenSerial, logger)
	if err != nil {
		stop()
		logger.Fatal().Err(err).Msg("backup failed")
	}
}

func logLevel(verbose, quiet bool) string {
	switch {
	case verbose:
		return "debug"
	case quiet:
		return "warn"
	default:
		return ""
	}
}

func parseArgs(args []string) (cmdArgs, error) {
	if len(args) != 4 {
		return cmdArgs{}, fmt.Errorf("expected 4 arguments, got %d", len(args))
	}

	offset, err := parseUint32(args[1])
	if err != nil {
		return cmdArgs{}, fmt.Errorf("invalid OFFSET %q: %w", args[1], err)
	}

	length, err := parseUint32(args[2])
	if err != nil {
		return cmdArgs{}, fmt.Errorf("invalid LENGTH %q: %w", args[2], err)
	}

	return cmdArgs{
		device: args[0],
		req:    memdump.Request{Offset: offset, Length: length},
		output: args[3],
	}, nil
}

// parseUint32 accepts the same literals as the Go syntax: 4096, 0x1000,
// 0o10000 and 0b1000000000000.
func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// loadConfig merges the configuration file, if any, and the flags that
// were given. Negative flag values mean unset.
func loadConfig(path string, addr, baud, retries int) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
	}

	if addr >= 0 {
		if addr > 30 {
			return config.Config{}, fmt.Errorf("GPIB address %d is out of range: valid range is 0-30", addr)
		}
		cfg.GPIBAddress = addr
	}
	if baud > 0 {
		cfg.BaudRate = baud
	}
	if retries >= 0 {
		cfg.ChunkRetry.MaxAttempts = retries
	}

	return cfg, nil
}

func run(ctx context.Context, cfg config.Config, args cmdArgs, open openFunc, logger zerolog.Logger) error {
	// reject a bad range before touching the port or the output file
	err := args.req.Validate()
	if err != nil {
		return err
	}

	port, err := open(args.device, cfg.BaudRate)
	if err != nil {
		return fmt.Errorf("could not open bridge: %w", err)
	}

	adapter := logging.NewAdapter(logger)

	s := bridge.New(port, append(cfg.BridgeOptions(), bridge.WithLogger(adapter))...)
	defer s.Close()

	err = s.Init(ctx)
	if err != nil {
		return fmt.Errorf("could not initialize bridge: %w", err)
	}

	r := memdump.New(s,
		memdump.WithLogger(adapter),
		memdump.WithRetryPolicy(cfg.ChunkRetry),
		memdump.WithProgressCallback(func(p memdump.Progress) {
			if p.Phase != memdump.PhaseReading || p.Chunk == 0 || p.Chunk%progressEvery != 0 {
				return
			}
			logger.Info().
				Str("address", fmt.Sprintf("0x%08X", p.Address)).
				Str("percent", fmt.Sprintf("%.1f", p.Percentage)).
				Int("retries", p.Retries).
				Msg("progress")
		}),
	)

	_, err = r.TransferToFile(ctx, args.req, args.output)
	if err != nil {
		return fmt.Errorf("could not dump memory to %q: %w", args.output, err)
	}

	return nil
}
