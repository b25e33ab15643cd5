package memdump

import (
	"errors"
	"fmt"
)

// ErrZeroLength is returned for a request that covers no bytes.
var ErrZeroLength = errors.New("length must be greater than zero")

// AlignmentError indicates that the request length is not a whole number of chunks.
type AlignmentError struct {
	Length    uint32
	ChunkSize uint32
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("length %d is not a multiple of the chunk size %d",
		e.Length, e.ChunkSize)
}

// ChunkSizeError indicates a chunk size the response header cannot announce.
type ChunkSizeError struct {
	ChunkSize uint32
	Max       uint32
}

func (e *ChunkSizeError) Error() string {
	return fmt.Sprintf("chunk size %d is out of range: valid range is 1-%d",
		e.ChunkSize, e.Max)
}

// RangeError indicates that the request runs past the end of the 32-bit address space.
type RangeError struct {
	Offset uint32
	Length uint32
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range 0x%08X+0x%X exceeds the 32-bit address space",
		e.Offset, e.Length)
}

// RetriesExhaustedError indicates that a chunk kept coming back short until
// the retry policy gave up. Err holds the last short read.
type RetriesExhaustedError struct {
	Address  uint32
	Attempts int
	Err      error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("chunk at 0x%08X: giving up after %d attempts: %v",
		e.Address, e.Attempts, e.Err)
}

func (e *RetriesExhaustedError) Unwrap() error {
	return e.Err
}
