package bridge

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// Port is the byte stream the bridge is reached through.
//
// A Read that times out must return (0, nil), which is how serial ports
// report an expired read timeout.
type Port interface {
	io.ReadWriteCloser

	// SetReadTimeout bounds how long a single Read may block.
	SetReadTimeout(t time.Duration) error
}

// OpenSerial opens a serial port in 8N1 mode at the given baud rate.
func OpenSerial(path string, baud int) (Port, error) {
	port, err := serial.Open(path, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("could not open serial port %q: %w", path, err)
	}
	return port, nil
}
