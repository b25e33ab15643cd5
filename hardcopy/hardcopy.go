package hardcopy

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/moffa90/go-tdsbackup/bridge"
)

// Instrument commands.
const (
	CmdFormat = "hardcopy:format"
	CmdPort   = "hardcopy:port gpib"
	CmdStart  = "hardcopy start"
)

// Capture asks the instrument for a screen dump and copies it to sink.
//
// The image is not framed: Capture reads exactly Size bytes. If the bridge
// stops relaying early, the bytes received are still written to sink and
// a *protocol.ShortReadError is returned.
//
// Example:
//
//	n, err := hardcopy.Capture(ctx, s, f)
func Capture(ctx context.Context, s *bridge.Session, sink io.Writer, opts ...Option) (int, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !s.Ready() {
		return 0, bridge.ErrNotInitialized
	}

	startTime := time.Now()

	cmds := []string{
		CmdFormat + " " + cfg.Format,
		CmdPort,
		CmdStart,
	}
	for _, cmd := range cmds {
		if err := s.SendLine([]byte(cmd)); err != nil {
			return 0, fmt.Errorf("%s: %w", cmd, err)
		}
	}
	if err := s.SendTrigger(); err != nil {
		return 0, fmt.Errorf("trigger read: %w", err)
	}

	if cfg.Logger != nil {
		cfg.Logger.Debug("capturing screen", "format", cfg.Format, "size", cfg.Size)
	}

	data, readErr := s.ReadExactly(cfg.Size)

	n, err := sink.Write(data)
	if err != nil {
		return n, fmt.Errorf("write image: %w", err)
	}
	if readErr != nil {
		if cfg.Logger != nil {
			cfg.Logger.Error("screen capture incomplete", "got", len(data), "want", cfg.Size)
		}
		return n, readErr
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("screen captured",
			"bytes", n,
			"elapsed", time.Since(startTime).String(),
		)
	}

	return n, nil
}

// CaptureToFile runs Capture into a new file at path. It refuses to
// overwrite an existing file.
func CaptureToFile(ctx context.Context, s *bridge.Session, path string, opts ...Option) (n int, err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("could not create output file: %w", err)
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = fmt.Errorf("could not close output file: %w", e)
		}
	}()

	return Capture(ctx, s, f, opts...)
}
