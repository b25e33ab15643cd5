package memdump

import (
	"errors"
	"strings"
	"testing"

	"github.com/moffa90/go-tdsbackup/protocol"
)

func TestAlignmentError(t *testing.T) {
	err := &AlignmentError{Length: 1000, ChunkSize: 1024}

	errMsg := err.Error()

	if !strings.Contains(errMsg, "length 1000") {
		t.Errorf("error message should contain length, got: %s", errMsg)
	}

	if !strings.Contains(errMsg, "1024") {
		t.Errorf("error message should contain chunk size, got: %s", errMsg)
	}
}

func TestRangeError(t *testing.T) {
	err := &RangeError{Offset: 0xFFFFFC00, Length: 0x800}

	errMsg := err.Error()

	if !strings.Contains(errMsg, "0xFFFFFC00") {
		t.Errorf("error message should contain offset, got: %s", errMsg)
	}

	if !strings.Contains(errMsg, "32-bit address space") {
		t.Errorf("error message should name the address space, got: %s", errMsg)
	}
}

func TestRetriesExhaustedError(t *testing.T) {
	short := &protocol.ShortReadError{Want: 1024, Got: 1000}
	err := &RetriesExhaustedError{
		Address:  0x04000400,
		Attempts: 16,
		Err:      short,
	}

	errMsg := err.Error()

	if !strings.Contains(errMsg, "0x04000400") {
		t.Errorf("error message should contain address, got: %s", errMsg)
	}

	if !strings.Contains(errMsg, "16 attempts") {
		t.Errorf("error message should contain attempts, got: %s", errMsg)
	}

	if !strings.Contains(errMsg, "got 1000 bytes") {
		t.Errorf("error message should contain the last short read, got: %s", errMsg)
	}

	var sre *protocol.ShortReadError
	if !errors.As(err, &sre) || sre != short {
		t.Error("RetriesExhaustedError should unwrap to the last short read")
	}

	if protocol.IsFatal(err) {
		t.Error("RetriesExhaustedError should not be classified as fatal")
	}
}

func TestErrorTypes(t *testing.T) {
	// Test that all error types implement error interface
	var _ error = &AlignmentError{}
	var _ error = &ChunkSizeError{}
	var _ error = &RangeError{}
	var _ error = &RetriesExhaustedError{}
}
