// tdshardcopy saves a screenshot of a Tektronix TDS oscilloscope through an
// AR488 USB-to-GPIB bridge.
//
// Usage: tdshardcopy [OPTIONS] DEVICE ADDRESS FILE
//
// Example:
//
//	$> tdshardcopy /dev/ttyUSB0 29 screen.bmp
package main // import "github.com/moffa90/go-tdsbackup/cmd/tdshardcopy"

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/moffa90/go-tdsbackup/bridge"
	"github.com/moffa90/go-tdsbackup/hardcopy"
	"github.com/moffa90/go-tdsbackup/internal/config"
	"github.com/moffa90/go-tdsbackup/internal/logging"
)

type cmdArgs struct {
	device  string
	address int
	output  string
}

type openFunc func(path string, baud int) (bridge.Port, error)

func main() {
	var (
		baud    = flag.Int("baud", -1, "serial speed of the bridge (default from config or 115200)")
		cfgPath = flag.String("config", "", "path to a TOML configuration file")
		size    = flag.Int("size", hardcopy.DefaultSize, "number of bytes the scope sends")
		format  = flag.String("format", hardcopy.DefaultFormat, "hardcopy format requested from the scope")
		verbose = flag.Bool("v", false, "enable debug logging")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `tdshardcopy saves a screenshot of a Tektronix TDS oscilloscope through an AR488 USB-to-GPIB bridge.

Usage: tdshardcopy [OPTIONS] DEVICE ADDRESS FILE

  DEVICE   the serial port on which the AR488 is available
  ADDRESS  the GPIB address of the scope (0-30)
  FILE     the output file, which must not exist yet

Example:

 $> tdshardcopy /dev/ttyUSB0 29 screen.bmp

Options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	level := ""
	if *verbose {
		level = "debug"
	}
	logger := logging.New(os.Stderr, logging.Options{Level: level})

	args, err := parseArgs(flag.Args())
	if err != nil {
		flag.Usage()
		logger.Fatal().Err(err).Msg("invalid arguments")
	}

	cfg := config.Default()
	if *cfgPath != "" {
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("could not load configuration")
		}
	}
	if *baud > 0 {
		cfg.BaudRate = *baud
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := []hardcopy.Option{
		hardcopy.WithSize(*size),
		hardcopy.WithFormat(*format),
	}

	err = run(ctx, cfg, args, bridge.OpenSerial, logger, opts...)
	if err != nil {
		stop()
		logger.Fatal().Err(err).Msg("hardcopy failed")
	}
}

func parseArgs(args []string) (cmdArgs, error) {
	if len(args) != 3 {
		return cmdArgs{}, fmt.Errorf("expected 3 arguments, got %d", len(args))
	}

	addr, err := strconv.Atoi(args[1])
	if err != nil {
		return cmdArgs{}, fmt.Errorf("invalid ADDRESS %q: %w", args[1], err)
	}
	if addr < 0 || addr > 30 {
		return cmdArgs{}, fmt.Errorf("GPIB address %d is out of range: valid range is 0-30", addr)
	}

	return cmdArgs{
		device:  args[0],
		address: addr,
		output:  args[2],
	}, nil
}

func run(ctx context.Context, cfg config.Config, args cmdArgs, open openFunc, logger zerolog.Logger, opts ...hardcopy.Option) (err error) {
	// the output must exist before the port is opened, which rules out
	// hardcopy.CaptureToFile
	f, err := os.OpenFile(args.output, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = fmt.Errorf("could not close output file: %w", e)
		}
	}()

	port, err := open(args.device, cfg.BaudRate)
	if err != nil {
		return fmt.Errorf("could not open bridge: %w", err)
	}

	adapter := logging.NewAdapter(logger)

	bopts := append(hardcopy.BridgeOptions(),
		bridge.WithGPIBAddress(args.address),
		bridge.WithBringUpReadTimeout(cfg.BringUpTimeout),
		bridge.WithBringUpPolicy(cfg.BringUpRetry),
		bridge.WithLogger(adapter),
	)
	s := bridge.New(port, bopts...)
	defer s.Close()

	err = s.Init(ctx)
	if err != nil {
		return fmt.Errorf("could not initialize bridge: %w", err)
	}

	_, err = hardcopy.Capture(ctx, s, f, append(opts, hardcopy.WithLogger(adapter))...)
	if err != nil {
		return fmt.Errorf("could not capture screen to %q: %w", args.output, err)
	}

	return nil
}
