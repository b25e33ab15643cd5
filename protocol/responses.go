package protocol

import (
	"encoding/binary"
	"fmt"
)

// ParseResponseHeader decodes and validates a response header.
//
// Header structure:
//
//	['+']['='][CHECKSUM][LEN_H][LEN_L]
//
// A truncated header or a wrong marker is a FramingError. The header is
// returned together with a marker error so callers can log what was actually
// received.
func ParseResponseHeader(header []byte) (*ResponseHeader, error) {
	if len(header) != ResponseHeaderSize {
		return nil, &FramingError{
			Field: "header",
			Got:   fmt.Sprintf("%d bytes", len(header)),
			Want:  fmt.Sprintf("%d bytes", ResponseHeaderSize),
		}
	}

	hdr := &ResponseHeader{
		Marker:   [2]byte{header[0], header[1]},
		Checksum: header[2],
		Length:   binary.BigEndian.Uint16(header[3:5]),
	}

	if hdr.Marker[0] != ResponseMarker0 || hdr.Marker[1] != ResponseMarker1 {
		return hdr, &FramingError{
			Field: "marker",
			Got:   fmt.Sprintf("%q", hdr.Marker[:]),
			Want:  fmt.Sprintf("%q", []byte{ResponseMarker0, ResponseMarker1}),
		}
	}

	return hdr, nil
}

// ValidateResponseLength checks that the header announces exactly the number
// of bytes that were requested. Any other value is a FramingError.
func ValidateResponseLength(hdr *ResponseHeader, requested uint32) error {
	if uint32(hdr.Length) != requested {
		return &FramingError{
			Field: "length",
			Got:   fmt.Sprintf("%d", hdr.Length),
			Want:  fmt.Sprintf("%d", requested),
		}
	}
	return nil
}

// VerifyPayload checks the payload checksum against the one announced in the
// header. A mismatch is a ChecksumError.
func VerifyPayload(hdr *ResponseHeader, payload []byte) error {
	actual := CalculateResponseChecksum(hdr.Bytes(), payload)
	if actual != hdr.Checksum {
		return &ChecksumError{
			Expected: hdr.Checksum,
			Actual:   actual,
		}
	}
	return nil
}

// BuildResponse constructs a complete framed response (header followed by
// payload) the way the bridge relays it. Used by simulators and tests.
func BuildResponse(payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("payload length %d exceeds maximum %d bytes", len(payload), MaxPayloadSize)
	}

	hdr := ResponseHeader{
		Marker: [2]byte{ResponseMarker0, ResponseMarker1},
		Length: uint16(len(payload)),
	}
	hdr.Checksum = CalculateResponseChecksum(hdr.Bytes(), payload)

	raw := hdr.Bytes()
	frame := make([]byte, 0, ResponseHeaderSize+len(payload))
	frame = append(frame, raw[:]...)
	frame = append(frame, payload...)

	return frame, nil
}
