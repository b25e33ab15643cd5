package protocol

import (
	"encoding/binary"
	"fmt"
)

// BuildReadMemoryCmd constructs a raw read memory command frame.
// The returned frame is not escaped; pass it through Escape before sending.
//
// Frame structure:
//
//	[CMD][CHECKSUM][BODY_LEN_H][BODY_LEN_L][ADDR(4) BE][LEN(4) BE]
//
// The checksum is the sum of the other 11 bytes modulo 256.
func BuildReadMemoryCmd(addr, length uint32) []byte {
	frame := make([]byte, ReadMemoryCmdSize)

	frame[0] = CmdReadMemory
	binary.BigEndian.PutUint16(frame[2:4], ReadMemoryBodyLength)
	binary.BigEndian.PutUint32(frame[4:8], addr)
	binary.BigEndian.PutUint32(frame[8:12], length)

	frame[CommandChecksumIndex] = CalculateCommandChecksum(frame)

	return frame
}

// ParseReadMemoryCmd decodes a raw (unescaped) read memory command frame.
// Validates the size, opcode, body length and checksum.
func ParseReadMemoryCmd(frame []byte) (*ReadCommand, error) {
	if len(frame) != ReadMemoryCmdSize {
		return nil, fmt.Errorf("invalid read memory command size: got %d bytes, expected %d", len(frame), ReadMemoryCmdSize)
	}

	if frame[0] != CmdReadMemory {
		return nil, fmt.Errorf("invalid opcode: got 0x%02X, expected 0x%02X", frame[0], CmdReadMemory)
	}

	bodyLen := binary.BigEndian.Uint16(frame[2:4])
	if bodyLen != ReadMemoryBodyLength {
		return nil, fmt.Errorf("invalid body length: got %d, expected %d", bodyLen, ReadMemoryBodyLength)
	}

	checksum := CalculateCommandChecksum(frame)
	if frame[CommandChecksumIndex] != checksum {
		return nil, &ChecksumError{
			Expected: frame[CommandChecksumIndex],
			Actual:   checksum,
		}
	}

	return &ReadCommand{
		Address:  binary.BigEndian.Uint32(frame[4:8]),
		Length:   binary.BigEndian.Uint32(frame[8:12]),
		Checksum: checksum,
	}, nil
}
