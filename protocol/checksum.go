package protocol

// CalculateCommandChecksum computes the 8-bit checksum of a command frame.
// It is the sum of every byte except the checksum slot itself
// (CommandChecksumIndex), modulo 256.
func CalculateCommandChecksum(frame []byte) byte {
	var sum byte
	for i, b := range frame {
		if i == CommandChecksumIndex {
			continue
		}
		sum += b
	}
	return sum
}

// CalculateResponseChecksum computes the checksum the bridge announces in a
// response header.
//
// The sum covers:
//   - header byte 1 (the '=' of the marker)
//   - header bytes 3 and 4 (the big-endian length field)
//   - every payload byte
//
// Header byte 2, the checksum itself, is excluded.
func CalculateResponseChecksum(header [ResponseHeaderSize]byte, payload []byte) byte {
	sum := header[1]
	sum += header[3]
	sum += header[4]
	for _, b := range payload {
		sum += b
	}
	return sum
}
