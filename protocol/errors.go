package protocol

import (
	"errors"
	"fmt"
)

// ShortReadError reports that fewer bytes than requested arrived before the
// transport read timeout expired. It is the only recoverable protocol error:
// the same request can simply be sent again.
type ShortReadError struct {
	// Want is the number of bytes requested
	Want int

	// Got is the number of bytes that actually arrived
	Got int
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("short read: got %d bytes, expected %d", e.Got, e.Want)
}

// FramingError reports a response that does not follow the frame layout.
// The host and the bridge are out of step; retrying the request cannot help.
type FramingError struct {
	// Field is the header field that failed validation ("header", "marker" or "length")
	Field string

	// Got is the value received
	Got string

	// Want is the value expected
	Want string
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("framing violation: invalid %s: got %s, expected %s", e.Field, e.Got, e.Want)
}

// ChecksumError reports a checksum that does not match the data it covers.
type ChecksumError struct {
	// Expected is the checksum announced by the sender
	Expected byte

	// Actual is the checksum computed over the received bytes
	Actual byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected 0x%02X, got 0x%02X", e.Expected, e.Actual)
}

// IsShortRead returns true if err is, or wraps, a ShortReadError.
func IsShortRead(err error) bool {
	var e *ShortReadError
	return errors.As(err, &e)
}

// IsFatal returns true if err is, or wraps, a FramingError or a ChecksumError.
// Such errors must abort a transfer instead of being retried.
func IsFatal(err error) bool {
	var (
		fe *FramingError
		ce *ChecksumError
	)
	return errors.As(err, &fe) || errors.As(err, &ce)
}
