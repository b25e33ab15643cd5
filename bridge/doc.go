// Package bridge drives an AR488-style USB-to-GPIB bridge controller over a
// serial port.
//
// The bridge accepts newline-terminated text commands ("++addr 29",
// "++read eoi", ...) interleaved with escaped binary data addressed to the
// instrument, and relays whatever the instrument answers.
//
// # Bring-up
//
// The adapter needs a moment after the port opens before it answers. Init
// polls "++ver" until a line comes back, then configures the bus:
//
//	s, err := bridge.Open("/dev/ttyUSB0", bridge.WithGPIBAddress(29))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	if err := s.Init(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// How long Init keeps polling is set with WithBringUpPolicy.
//
// # I/O
//
// Once initialized, a Session exposes blocking primitives:
//   - Send / SendLine / SendCommand write to the bridge
//   - SendTrigger asks the bridge to relay the instrument's response
//   - ReadExactly reads a fixed number of bytes, reporting a
//     *protocol.ShortReadError if the read timeout expires first
//
// # Hardware Independence
//
// New accepts any Port, so tests and simulators can stand in for the
// serial device.
package bridge
