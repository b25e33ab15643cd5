package protocol

// ReadCommand is the decoded form of a read memory command.
type ReadCommand struct {
	// Address is the first instrument address to read
	Address uint32

	// Length is the number of bytes requested
	Length uint32

	// Checksum is the command checksum carried in byte 1
	Checksum byte
}

// ResponseHeader is the 5-byte header the bridge relays before a payload.
type ResponseHeader struct {
	// Marker is always "+=" on a well-formed response
	Marker [2]byte

	// Checksum covers the marker's second byte, the length field and the payload
	Checksum byte

	// Length is the number of payload bytes that follow (big-endian on the wire)
	Length uint16
}

// Bytes returns the header in wire order.
func (h ResponseHeader) Bytes() [ResponseHeaderSize]byte {
	return [ResponseHeaderSize]byte{
		h.Marker[0],
		h.Marker[1],
		h.Checksum,
		byte(h.Length >> 8),
		byte(h.Length),
	}
}
