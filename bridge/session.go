package bridge

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/moffa90/go-tdsbackup/protocol"
	"github.com/moffa90/go-tdsbackup/retry"
)

// Session is a connection to an AR488-style USB-to-GPIB bridge.
// It owns its Port until Close is called.
//
// A Session is not safe for concurrent use: the bridge handles exactly one
// request at a time.
type Session struct {
	port    Port
	config  Config
	version string
	ready   bool
}

// New creates a new Session on an already opened port.
//
// Example:
//
//	s := bridge.New(port, bridge.WithGPIBAddress(29))
//	if err := s.Init(ctx); err != nil {
//	    log.Fatal(err)
//	}
func New(port Port, opts ...Option) *Session {
	if port == nil {
		panic("port cannot be nil")
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Session{
		port:   port,
		config: cfg,
	}
}

// Open opens the serial port at path and creates a Session on it.
// The port is not initialized; call Init before reading.
func Open(path string, opts ...Option) (*Session, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	port, err := OpenSerial(path, cfg.BaudRate)
	if err != nil {
		return nil, err
	}

	return New(port, WithConfig(cfg)), nil
}

// Init brings the bridge into a known, addressable state:
//  1. Query the version until the bridge answers
//  2. Clear the interface, select the instrument, enable EOI, set EOS
//     handling and the bridge read timeout
//  3. Switch to the longer transfer read timeout
func (s *Session) Init(ctx context.Context) error {
	err := s.port.SetReadTimeout(s.config.BringUpReadTimeout)
	if err != nil {
		return fmt.Errorf("could not set bring-up read timeout: %w", err)
	}

	version, err := s.awaitVersion(ctx)
	if err != nil {
		return err
	}
	s.version = version
	s.logInfo("bridge is alive", "version", version)

	for _, cmd := range s.setupCommands() {
		err = s.SendCommand(cmd[0], cmd[1:]...)
		if err != nil {
			return fmt.Errorf("could not configure bridge: %w", err)
		}
	}

	err = s.port.SetReadTimeout(s.config.TransferReadTimeout)
	if err != nil {
		return fmt.Errorf("could not set transfer read timeout: %w", err)
	}

	s.ready = true
	s.logDebug("bridge configured",
		"gpib_address", s.config.GPIBAddress,
		"read_timeout", s.config.TransferReadTimeout.String(),
	)

	return nil
}

func (s *Session) awaitVersion(ctx context.Context) (string, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if err := s.SendCommand(CmdVersion); err != nil {
			return "", err
		}

		line, err := s.ReadLine()
		if err != nil {
			return "", err
		}
		if len(line) > 0 {
			return strings.TrimRight(string(line), "\r\n"), nil
		}

		s.logDebug("bridge not responding yet", "attempt", attempt)

		if s.config.BringUp.Exhausted(attempt) {
			return "", &BringUpTimeoutError{Attempts: attempt}
		}
		if err := retry.Wait(ctx, s.config.BringUp.Delay(attempt)); err != nil {
			return "", err
		}
	}
}

func (s *Session) setupCommands() [][]string {
	var cmds [][]string
	if s.config.InterfaceClear {
		cmds = append(cmds, []string{CmdInterfaceClear})
	}
	cmds = append(cmds,
		[]string{CmdAddress, fmt.Sprintf("%d", s.config.GPIBAddress)},
		[]string{CmdEOI, "1"},
	)
	if s.config.EOS != EOSUnset {
		cmds = append(cmds, []string{CmdEOS, fmt.Sprintf("%d", s.config.EOS)})
	}
	cmds = append(cmds,
		[]string{CmdReadTimeout, fmt.Sprintf("%d", s.config.BridgeReadTimeout.Milliseconds())},
	)
	return cmds
}

// Version returns the version string reported by the bridge during Init.
func (s *Session) Version() string {
	return s.version
}

// Ready reports whether Init completed.
func (s *Session) Ready() bool {
	return s.ready
}

// Send writes p to the bridge as is.
func (s *Session) Send(p []byte) error {
	n, err := s.port.Write(p)
	switch {
	case err != nil:
		return fmt.Errorf("could not write to bridge: %w", err)
	case n != len(p):
		return fmt.Errorf("could not write to bridge: %w", io.ErrShortWrite)
	}
	return nil
}

// SendLine writes p followed by the instruction terminator.
func (s *Session) SendLine(p []byte) error {
	line := make([]byte, 0, len(p)+1)
	line = append(line, p...)
	line = append(line, protocol.Terminator)
	return s.Send(line)
}

// SendCommand writes a text command, its space-separated arguments and the
// instruction terminator.
func (s *Session) SendCommand(cmd string, args ...string) error {
	line := cmd
	if len(args) > 0 {
		line += " " + strings.Join(args, " ")
	}
	if err := s.SendLine([]byte(line)); err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	return nil
}

// SendTrigger tells the bridge to address the instrument to talk and relay
// everything up to EOI.
func (s *Session) SendTrigger() error {
	if !s.ready {
		return ErrNotInitialized
	}
	return s.SendCommand(CmdRead, ReadUntilEOI)
}

// ReadExactly reads n bytes. If the read timeout expires first, the bytes
// received so far are returned together with a *protocol.ShortReadError.
func (s *Session) ReadExactly(n int) ([]byte, error) {
	buf := make([]byte, n)
	got := 0
	for got < n {
		m, err := s.port.Read(buf[got:])
		got += m
		if err != nil {
			return buf[:got], fmt.Errorf("could not read from bridge: %w", err)
		}
		if m == 0 {
			return buf[:got], &protocol.ShortReadError{Want: n, Got: got}
		}
	}
	return buf, nil
}

// ReadLine reads up to and including the next LF. On timeout it returns
// whatever arrived, possibly nothing.
func (s *Session) ReadLine() ([]byte, error) {
	var (
		line bytes.Buffer
		b    = make([]byte, 1)
	)
	for {
		n, err := s.port.Read(b)
		if err != nil {
			return line.Bytes(), fmt.Errorf("could not read from bridge: %w", err)
		}
		if n == 0 {
			return line.Bytes(), nil
		}
		line.WriteByte(b[0])
		if b[0] == protocol.LF {
			return line.Bytes(), nil
		}
	}
}

// SetReadTimeout changes the host read timeout.
func (s *Session) SetReadTimeout(timeout time.Duration) error {
	if err := s.port.SetReadTimeout(timeout); err != nil {
		return fmt.Errorf("could not set read timeout to %v: %w", timeout, err)
	}
	return nil
}

// Close releases the port.
func (s *Session) Close() error {
	s.ready = false
	return s.port.Close()
}
