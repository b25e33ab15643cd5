package protocol

import "errors"

// ErrDanglingEscape is returned by Unescape when the input ends with a lone
// escape marker.
var ErrDanglingEscape = errors.New("dangling escape byte at end of input")

// IsControlByte reports whether b has to be escaped before it can travel
// inside binary data sent to the bridge.
func IsControlByte(b byte) bool {
	switch b {
	case CR, LF, ESC, Plus:
		return true
	}
	return false
}

// Escape returns p with every control byte prefixed by a single ESC.
// All other bytes are copied unchanged.
func Escape(p []byte) []byte {
	out := make([]byte, 0, len(p)+countControlBytes(p))
	for _, b := range p {
		if IsControlByte(b) {
			out = append(out, ESC)
		}
		out = append(out, b)
	}
	return out
}

// Unescape reverses Escape: every ESC is dropped and the byte after it is
// taken literally.
func Unescape(p []byte) ([]byte, error) {
	out := make([]byte, 0, len(p))
	for i := 0; i < len(p); i++ {
		if p[i] == ESC {
			i++
			if i == len(p) {
				return nil, ErrDanglingEscape
			}
		}
		out = append(out, p[i])
	}
	return out, nil
}

func countControlBytes(p []byte) int {
	n := 0
	for _, b := range p {
		if IsControlByte(b) {
			n++
		}
	}
	return n
}
