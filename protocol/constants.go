package protocol

// Read memory command layout.
const (
	// CmdReadMemory is the opcode of the read memory command ('m')
	CmdReadMemory = 0x6D

	// ReadMemoryBodyLength is the body length carried in bytes 2-3 of every
	// read memory command: address(4) + length(4)
	ReadMemoryBodyLength = 8

	// ReadMemoryCmdSize is the size of a raw (unescaped) read memory command:
	// CMD(1) + CHECKSUM(1) + BODY_LEN(2) + ADDR(4) + LEN(4)
	ReadMemoryCmdSize = 12

	// CommandChecksumIndex is the position of the checksum byte in a command frame
	CommandChecksumIndex = 1
)

// Response header layout.
const (
	// ResponseMarker0 and ResponseMarker1 open every framed response ("+=")
	ResponseMarker0 = '+'
	ResponseMarker1 = '='

	// ResponseHeaderSize is the size of a response header:
	// MARKER(2) + CHECKSUM(1) + LEN(2)
	ResponseHeaderSize = 5

	// MaxPayloadSize is the largest payload a response header can announce
	MaxPayloadSize = 0xFFFF
)

// Control bytes that the bridge interprets on the wire and that must be
// escaped inside binary data.
const (
	// CR is a carriage return (0x0D)
	CR = 0x0D

	// LF is a line feed (0x0A), the bridge's instruction terminator
	LF = 0x0A

	// ESC is the escape marker (0x1B)
	ESC = 0x1B

	// Plus is the '+' prefix of bridge commands (0x2B)
	Plus = 0x2B
)

// Ack is the raw acknowledge byte sent after a chunk has been accepted.
const Ack = '+'

// Terminator ends every instruction sent to the bridge.
const Terminator = LF

// ChunkSize is the fixed number of bytes requested per read memory command.
const ChunkSize = 1024
