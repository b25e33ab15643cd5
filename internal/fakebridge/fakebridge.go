// Package fakebridge simulates an AR488 bridge wired to an instrument whose
// memory can be dumped. It implements bridge.Port.
package fakebridge // import "github.com/moffa90/go-tdsbackup/internal/fakebridge"

import (
	"bytes"
	"encoding/binary"
	"strings"
	"time"

	"github.com/moffa90/go-tdsbackup/protocol"
)

// Fault alters the response to one read memory request.
type Fault struct {
	// Short drops this many bytes from the end of the response
	Short int

	// Length, when non-zero, replaces the announced payload length
	Length uint16

	// Marker, when non-zero, replaces the "+=" marker
	Marker [2]byte

	// CorruptChecksum flips the announced checksum
	CorruptChecksum bool
}

// Bridge is a scripted bridge + instrument pair.
type Bridge struct {
	// Version is the answer to ++ver
	Version string

	// SilentPolls is the number of ++ver queries ignored before answering
	SilentPolls int

	// Base is the instrument address of Memory[0]
	Base uint32

	// Memory is the instrument address space served to read memory commands
	Memory []byte

	// Faults are applied, in order, to successive read memory responses
	Faults []Fault

	// Hardcopy is relayed after "hardcopy start" and ++read eoi
	Hardcopy []byte

	// ReadErr and WriteErr, when set, are returned by every Read or Write
	ReadErr  error
	WriteErr error

	// Recorded traffic
	Lines    []string               // every text line received, in order
	Requests []protocol.ReadCommand // decoded read memory commands
	Frames   [][]byte               // read memory commands as received (escaped)
	Acks     int                    // acknowledge bytes received
	Writes   int                    // Write calls
	Timeouts []time.Duration        // SetReadTimeout calls
	Closed   bool

	in       []byte
	out      bytes.Buffer
	pending  *protocol.ReadCommand
	hardcopy bool
}

// New returns a bridge serving size bytes of patterned memory at base.
func New(base uint32, size int) *Bridge {
	return &Bridge{
		Version: "AR488 GPIB controller, ver. 0.49.14, 02/03/2021",
		Base:    base,
		Memory:  Pattern(size),
	}
}

// Pattern returns n bytes that differ between neighbouring chunks and
// include every control byte.
func Pattern(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i*7 + i>>10)
	}
	return p
}

// Addresses returns the addresses of the read memory commands received.
func (b *Bridge) Addresses() []uint32 {
	addrs := make([]uint32, len(b.Requests))
	for i, r := range b.Requests {
		addrs[i] = r.Address
	}
	return addrs
}

// Inject queues p as if the bridge had sent it.
func (b *Bridge) Inject(p []byte) {
	b.out.Write(p)
}

// Pending returns the number of bytes sent by the bridge and not read yet.
func (b *Bridge) Pending() int {
	return b.out.Len()
}

// Read implements io.Reader. An empty output queue behaves like an expired
// serial read timeout.
func (b *Bridge) Read(p []byte) (int, error) {
	if b.ReadErr != nil {
		return 0, b.ReadErr
	}
	if b.out.Len() == 0 {
		return 0, nil
	}
	return b.out.Read(p)
}

// Write implements io.Writer.
func (b *Bridge) Write(p []byte) (int, error) {
	b.Writes++
	if b.WriteErr != nil {
		return 0, b.WriteErr
	}

	b.in = append(b.in, p...)
	for {
		i := lineEnd(b.in)
		if i < 0 {
			break
		}
		line := append([]byte(nil), b.in[:i]...)
		b.in = b.in[i+1:]
		b.handle(line)
	}
	return len(p), nil
}

// SetReadTimeout implements bridge.Port.
func (b *Bridge) SetReadTimeout(t time.Duration) error {
	b.Timeouts = append(b.Timeouts, t)
	return nil
}

// Close implements io.Closer.
func (b *Bridge) Close() error {
	b.Closed = true
	return nil
}

// lineEnd returns the index of the first unescaped LF, or -1.
func lineEnd(p []byte) int {
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case protocol.ESC:
			i++
		case protocol.LF:
			return i
		}
	}
	return -1
}

func (b *Bridge) handle(line []byte) {
	if bytes.HasPrefix(line, []byte("++")) {
		b.handleCommand(string(line))
		return
	}

	raw, err := protocol.Unescape(line)
	if err != nil {
		return
	}

	switch {
	case len(raw) == 1 && raw[0] == protocol.Ack:
		b.Acks++
	case len(raw) == protocol.ReadMemoryCmdSize && raw[0] == protocol.CmdReadMemory:
		cmd, err := protocol.ParseReadMemoryCmd(raw)
		if err != nil {
			return
		}
		b.Frames = append(b.Frames, line)
		b.Requests = append(b.Requests, *cmd)
		b.pending = cmd
	default:
		txt := string(raw)
		b.Lines = append(b.Lines, txt)
		if strings.EqualFold(txt, "hardcopy start") {
			b.hardcopy = true
		}
	}
}

func (b *Bridge) handleCommand(line string) {
	b.Lines = append(b.Lines, line)

	switch {
	case line == "++ver":
		if b.SilentPolls > 0 {
			b.SilentPolls--
			return
		}
		b.out.WriteString(b.Version + "\r\n")
	case line == "++read eoi":
		switch {
		case b.pending != nil:
			b.respond(*b.pending)
			b.pending = nil
		case b.hardcopy:
			b.out.Write(b.Hardcopy)
			b.hardcopy = false
		}
	}
}

func (b *Bridge) respond(cmd protocol.ReadCommand) {
	payload := make([]byte, cmd.Length)
	if off := int64(cmd.Address) - int64(b.Base); off >= 0 && off < int64(len(b.Memory)) {
		copy(payload, b.Memory[off:])
	}

	frame, err := protocol.BuildResponse(payload)
	if err != nil {
		return
	}

	if len(b.Faults) > 0 {
		f := b.Faults[0]
		b.Faults = b.Faults[1:]

		if f.Length != 0 {
			binary.BigEndian.PutUint16(frame[3:5], f.Length)
		}
		if f.Marker != [2]byte{} {
			copy(frame[0:2], f.Marker[:])
		}
		if f.CorruptChecksum {
			frame[2] ^= 0xFF
		}
		if f.Short > 0 && f.Short <= len(frame) {
			frame = frame[:len(frame)-f.Short]
		}
	}

	b.out.Write(frame)
}
