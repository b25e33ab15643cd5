// Package protocol implements the binary memory-read protocol spoken through an
// AR488-style USB-to-GPIB bridge.
//
// This package builds read memory command frames, escapes binary data for the
// bridge's text-oriented command channel, and validates the framed responses
// the instrument sends back.
//
// # Protocol Overview
//
// A read request is a 12-byte command followed by the bridge terminator:
//
//	Command:  [0x6D][CHECKSUM][0x00][0x08][ADDR(4)][LEN(4)]
//	Response: ['+']['='][CHECKSUM][LEN(2)][DATA...]
//
// Where:
//   - multi-byte fields are big-endian
//   - the command CHECKSUM is the sum of the other 11 bytes modulo 256
//   - the response CHECKSUM is the sum of '=', both LEN bytes and all DATA bytes
//
// # Escaping
//
// The bridge treats CR, LF, ESC and '+' as control characters. Binary data must
// be passed through Escape, which prefixes each of them with ESC:
//
//	frame := protocol.BuildReadMemoryCmd(0x04080000, protocol.ChunkSize)
//	wire := append(protocol.Escape(frame), protocol.Terminator)
//
// # Response Validation
//
//	hdr, err := protocol.ParseResponseHeader(header)
//	err = protocol.ValidateResponseLength(hdr, requested)
//	err = protocol.VerifyPayload(hdr, payload)
//
// # Error Handling
//
// Errors come in two severities:
//   - ShortReadError: data stopped arriving early; resending the request is safe
//   - FramingError, ChecksumError: the stream is corrupt or out of step; abort
//
// Use IsShortRead and IsFatal to classify an error.
package protocol
