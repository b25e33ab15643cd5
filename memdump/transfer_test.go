package memdump

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/moffa90/go-tdsbackup/internal/fakebridge"
	"github.com/moffa90/go-tdsbackup/protocol"
)

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name      string
		req       Request
		wantError string
	}{
		{
			name: "single chunk",
			req:  Request{Offset: testBase, Length: 1024},
		},
		{
			name: "ends at top of address space",
			req:  Request{Offset: 0xFFFFF800, Length: 2048},
		},
		{
			name: "custom chunk size",
			req:  Request{Offset: 0, Length: 1536, ChunkSize: 512},
		},
		{
			name:      "zero length",
			req:       Request{Offset: testBase},
			wantError: "greater than zero",
		},
		{
			name:      "not a multiple of the chunk size",
			req:       Request{Offset: testBase, Length: 1000},
			wantError: "not a multiple",
		},
		{
			name:      "runs past top of address space",
			req:       Request{Offset: 0xFFFFFC00, Length: 2048},
			wantError: "exceeds the 32-bit address space",
		},
		{
			name:      "chunk size too large",
			req:       Request{Length: 0x20000, ChunkSize: 0x10000},
			wantError: "chunk size 65536 is out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()

			if tt.wantError == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("error = %v, want substring %q", err, tt.wantError)
			}
		})
	}
}

func TestRequestAddresses(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want []uint32
	}{
		{
			name: "default chunk size",
			req:  Request{Offset: 0x1000, Length: 4096},
			want: []uint32{0x1000, 0x1400, 0x1800, 0x1C00},
		},
		{
			name: "custom chunk size",
			req:  Request{Offset: 0, Length: 1536, ChunkSize: 512},
			want: []uint32{0, 0x200, 0x400},
		},
		{
			name: "top of address space",
			req:  Request{Offset: 0xFFFFF800, Length: 2048},
			want: []uint32{0xFFFFF800, 0xFFFFFC00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.NumChunks(); got != len(tt.want) {
				t.Errorf("NumChunks() = %d, want %d", got, len(tt.want))
			}
			if diff := cmp.Diff(tt.want, tt.req.Addresses()); diff != "" {
				t.Errorf("Addresses() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTransfer(t *testing.T) {
	const chunks = 8

	fake := fakebridge.New(testBase, chunks*protocol.ChunkSize)
	logger := &MockLogger{}
	r := New(newSession(t, fake), WithRetryPolicy(noWait), WithLogger(logger))

	req := Request{Offset: testBase, Length: chunks * protocol.ChunkSize}
	var sink bytes.Buffer

	stats, err := r.Transfer(context.Background(), req, &sink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.Equal(sink.Bytes(), fake.Memory) {
		t.Error("sink does not match instrument memory")
	}
	if diff := cmp.Diff(req.Addresses(), fake.Addresses()); diff != "" {
		t.Errorf("request order mismatch (-want +got):\n%s", diff)
	}
	if stats.Chunks != chunks || stats.Bytes != chunks*protocol.ChunkSize || stats.Retries != 0 {
		t.Errorf("Stats = %+v, want %d chunks, %d bytes, 0 retries",
			stats, chunks, chunks*protocol.ChunkSize)
	}
	if fake.Acks != chunks {
		t.Errorf("Acks = %d, want %d", fake.Acks, chunks)
	}
	if len(logger.infoMsgs) == 0 {
		t.Error("expected info log messages, got none")
	}
}

func TestTransferStopsAtFatalError(t *testing.T) {
	fake := fakebridge.New(testBase, 4*protocol.ChunkSize)
	fake.Faults = []fakebridge.Fault{{}, {}, {CorruptChecksum: true}}
	r := New(newSession(t, fake), WithRetryPolicy(noWait))

	req := Request{Offset: testBase, Length: 4 * protocol.ChunkSize}
	var sink bytes.Buffer

	stats, err := r.Transfer(context.Background(), req, &sink)

	var ce *protocol.ChecksumError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want *protocol.ChecksumError", err)
	}
	if !strings.Contains(err.Error(), "0x04000800") {
		t.Errorf("error should name the failing address, got: %v", err)
	}
	if stats.Chunks != 2 {
		t.Errorf("Stats.Chunks = %d, want 2", stats.Chunks)
	}
	if !bytes.Equal(sink.Bytes(), fake.Memory[:2*protocol.ChunkSize]) {
		t.Error("chunks before the failure should stay in the sink")
	}
	if len(fake.Requests) != 3 {
		t.Errorf("Requests = %d, want 3", len(fake.Requests))
	}
}

func TestTransferRejectsInvalidRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{
			name:    "zero length",
			req:     Request{Offset: testBase},
			wantErr: ErrZeroLength,
		},
		{
			name: "length not a multiple of 1024",
			req:  Request{Offset: testBase, Length: 1000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := fakebridge.New(testBase, protocol.ChunkSize)
			r := New(newSession(t, fake))
			writes := fake.Writes

			var sink bytes.Buffer
			_, err := r.Transfer(context.Background(), tt.req, &sink)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if fake.Writes != writes {
				t.Errorf("bridge written %d times, want none", fake.Writes-writes)
			}
			if sink.Len() != 0 {
				t.Errorf("sink has %d bytes, want 0", sink.Len())
			}
		})
	}
}

func TestTransferProgress(t *testing.T) {
	fake := fakebridge.New(testBase, 3*protocol.ChunkSize)
	fake.Faults = []fakebridge.Fault{{}, {Short: 24}}

	var updates []Progress
	r := New(newSession(t, fake),
		WithRetryPolicy(noWait),
		WithProgressCallback(func(p Progress) {
			updates = append(updates, p)
		}),
	)

	req := Request{Offset: testBase, Length: 3 * protocol.ChunkSize}
	stats, err := r.Transfer(context.Background(), req, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var phases []string
	for _, p := range updates {
		phases = append(phases, p.Phase)
	}
	want := []string{PhaseReading, PhaseReading, PhaseRetrying, PhaseReading, PhaseComplete}
	if diff := cmp.Diff(want, phases); diff != "" {
		t.Errorf("phases mismatch (-want +got):\n%s", diff)
	}

	retrying := updates[2]
	if retrying.Address != testBase+protocol.ChunkSize || retrying.Retries != 1 {
		t.Errorf("retry update = %+v, want Address=0x04000400 Retries=1", retrying)
	}

	last := updates[len(updates)-1]
	if last.Percentage != 100 {
		t.Errorf("final Percentage = %.1f, want 100", last.Percentage)
	}
	if last.Chunk != 3 || last.TotalChunks != 3 {
		t.Errorf("final Chunk = %d/%d, want 3/3", last.Chunk, last.TotalChunks)
	}
	if last.BytesRead != 3*protocol.ChunkSize {
		t.Errorf("final BytesRead = %d, want %d", last.BytesRead, 3*protocol.ChunkSize)
	}
	if stats.Retries != 1 || last.Retries != 1 {
		t.Errorf("Retries = %d (progress %d), want 1", stats.Retries, last.Retries)
	}
}

func TestTransferWithContextCancellation(t *testing.T) {
	fake := fakebridge.New(testBase, 4*protocol.ChunkSize)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New(newSession(t, fake),
		WithProgressCallback(func(p Progress) {
			if p.Phase == PhaseReading && p.Chunk == 1 {
				cancel()
			}
		}),
	)

	req := Request{Offset: testBase, Length: 4 * protocol.ChunkSize}
	stats, err := r.Transfer(ctx, req, &bytes.Buffer{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if stats.Chunks != 1 {
		t.Errorf("Stats.Chunks = %d, want 1", stats.Chunks)
	}
	if len(fake.Requests) != 1 {
		t.Errorf("Requests = %d, want 1", len(fake.Requests))
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestTransferSinkError(t *testing.T) {
	fake := fakebridge.New(testBase, 2*protocol.ChunkSize)
	r := New(newSession(t, fake))

	req := Request{Offset: testBase, Length: 2 * protocol.ChunkSize}
	_, err := r.Transfer(context.Background(), req, failingWriter{})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("error = %v, want sink error", err)
	}
	if len(fake.Requests) != 1 {
		t.Errorf("Requests = %d, want 1", len(fake.Requests))
	}
}

func TestTransferToFile(t *testing.T) {
	fake := fakebridge.New(testBase, 4*protocol.ChunkSize)
	r := New(newSession(t, fake))

	path := filepath.Join(t.TempDir(), "flash.bin")
	req := Request{Offset: testBase, Length: 4 * protocol.ChunkSize}

	if _, err := r.TransferToFile(context.Background(), req, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Equal(got, fake.Memory) {
		t.Error("file does not match instrument memory")
	}
}

func TestTransferToFileInvalidRequestCreatesNothing(t *testing.T) {
	fake := fakebridge.New(testBase, protocol.ChunkSize)
	r := New(newSession(t, fake))
	writes := fake.Writes

	path := filepath.Join(t.TempDir(), "flash.bin")
	req := Request{Offset: testBase, Length: 1000}

	_, err := r.TransferToFile(context.Background(), req, path)

	var ae *AlignmentError
	if !errors.As(err, &ae) {
		t.Fatalf("error = %v, want *AlignmentError", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("output file exists after rejected request (stat: %v)", err)
	}
	if fake.Writes != writes {
		t.Errorf("bridge written %d times, want none", fake.Writes-writes)
	}
}

func TestTransferToFileKeepsPartialOutput(t *testing.T) {
	fake := fakebridge.New(testBase, 3*protocol.ChunkSize)
	fake.Faults = []fakebridge.Fault{{}, {Marker: [2]byte{'?', '?'}}}
	r := New(newSession(t, fake))

	path := filepath.Join(t.TempDir(), "flash.bin")
	req := Request{Offset: testBase, Length: 3 * protocol.ChunkSize}

	_, err := r.TransferToFile(context.Background(), req, path)
	if !protocol.IsFatal(err) {
		t.Fatalf("error = %v, want a fatal protocol error", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Equal(got, fake.Memory[:protocol.ChunkSize]) {
		t.Errorf("file has %d bytes, want the first chunk only", len(got))
	}
}
