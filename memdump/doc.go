// Package memdump reads instrument memory through an AR488 bridge and
// streams it to a file.
//
// # Overview
//
// Memory is read in fixed-size chunks. For each chunk the reader:
//   - Sends an escaped 12-byte read memory command and "++read eoi"
//   - Reads the 5-byte response header and checks its marker and length
//   - Reads the payload and verifies its checksum
//   - Acknowledges the chunk with an escaped '+'
//
// # Basic Usage
//
//	s, err := bridge.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	if err := s.Init(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	r := memdump.New(s)
//	req := memdump.Request{Offset: 0x04000000, Length: 0x00400000}
//	if _, err := r.TransferToFile(ctx, req, "flash.bin"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Retries
//
// The bridge occasionally relays fewer bytes than the instrument sent. Such a
// short read is retried with the identical command, as governed by a
// retry.Policy:
//
//	r := memdump.New(s, memdump.WithRetryPolicy(retry.Policy{
//	    MaxAttempts:  8,
//	    InitialDelay: 200 * time.Millisecond,
//	    Multiplier:   2,
//	}))
//
// retry.Unbounded() retries until the chunk arrives.
//
// # Error Handling
//
// Errors fall in three classes:
//   - protocol.ShortReadError: retried; surfaces wrapped in a
//     RetriesExhaustedError once the policy gives up
//   - protocol.FramingError, protocol.ChecksumError: the transfer stops at once
//   - AlignmentError, ChunkSizeError, RangeError, ErrZeroLength: the request
//     is rejected before anything is sent
//
// Use protocol.IsFatal and protocol.IsShortRead to classify them.
package memdump
