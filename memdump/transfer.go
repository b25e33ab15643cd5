package memdump

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/moffa90/go-tdsbackup/protocol"
)

// Request describes a contiguous range of instrument memory.
type Request struct {
	// Offset is the first instrument address to read
	Offset uint32

	// Length is the number of bytes to read, a multiple of ChunkSize
	Length uint32

	// ChunkSize is the number of bytes per read memory command.
	// Zero means protocol.ChunkSize.
	ChunkSize uint32
}

func (r Request) chunkSize() uint32 {
	if r.ChunkSize == 0 {
		return protocol.ChunkSize
	}
	return r.ChunkSize
}

// Validate checks the request before any I/O happens.
func (r Request) Validate() error {
	size := r.chunkSize()
	if size > protocol.MaxPayloadSize {
		return &ChunkSizeError{ChunkSize: size, Max: protocol.MaxPayloadSize}
	}
	if r.Length == 0 {
		return ErrZeroLength
	}
	if r.Length%size != 0 {
		return &AlignmentError{Length: r.Length, ChunkSize: size}
	}
	if uint64(r.Offset)+uint64(r.Length) > math.MaxUint32+1 {
		return &RangeError{Offset: r.Offset, Length: r.Length}
	}
	return nil
}

// NumChunks returns the number of read memory commands the request needs.
func (r Request) NumChunks() int {
	return int(r.Length / r.chunkSize())
}

// Addresses returns the chunk addresses in transfer order.
func (r Request) Addresses() []uint32 {
	size := r.chunkSize()
	addrs := make([]uint32, r.NumChunks())
	for i := range addrs {
		addrs[i] = r.Offset + uint32(i)*size
	}
	return addrs
}

// Stats summarizes a transfer.
type Stats struct {
	Chunks  int
	Bytes   int
	Retries int
	Elapsed time.Duration
}

// Transfer reads every chunk of req in increasing address order and writes
// each payload to sink as soon as it is verified.
//
// An invalid request is rejected before anything is sent. The first error
// stops the transfer; chunks already written stay in the sink.
//
// Example:
//
//	req := memdump.Request{Offset: 0x04000000, Length: 0x00400000}
//	stats, err := r.Transfer(ctx, req, f)
func (r *Reader) Transfer(ctx context.Context, req Request, sink io.Writer) (Stats, error) {
	if err := req.Validate(); err != nil {
		return Stats{}, err
	}

	var (
		startTime = time.Now()
		size      = req.chunkSize()
		total     = req.NumChunks()
		stats     Stats
	)

	r.logInfo("starting transfer",
		"offset", fmt.Sprintf("0x%08X", req.Offset),
		"length", req.Length,
		"chunks", total,
	)

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			stats.Elapsed = time.Since(startTime)
			return stats, fmt.Errorf("cancelled: %w", err)
		}

		addr := req.Offset + uint32(i)*size
		progress := Progress{
			Phase:       PhaseReading,
			Chunk:       i,
			TotalChunks: total,
			Address:     addr,
			BytesRead:   stats.Bytes,
			Retries:     stats.Retries,
			Percentage:  float64(i) / float64(total) * 100,
			ElapsedTime: time.Since(startTime),
		}
		r.reportProgress(progress)

		chunk, retries, err := r.readChunk(ctx, addr, size, func(attempt int) {
			progress.Phase = PhaseRetrying
			progress.Retries = stats.Retries + attempt
			progress.ElapsedTime = time.Since(startTime)
			r.reportProgress(progress)
		})
		stats.Retries += retries
		if err != nil {
			stats.Elapsed = time.Since(startTime)
			return stats, fmt.Errorf("read chunk %d/%d at 0x%08X: %w", i+1, total, addr, err)
		}

		if _, err := sink.Write(chunk.Payload); err != nil {
			stats.Elapsed = time.Since(startTime)
			return stats, fmt.Errorf("write chunk at 0x%08X: %w", addr, err)
		}

		stats.Chunks++
		stats.Bytes += len(chunk.Payload)

		r.logDebug("chunk read",
			"address", fmt.Sprintf("0x%08X", addr),
			"retries", retries,
		)
	}

	stats.Elapsed = time.Since(startTime)

	r.reportProgress(Progress{
		Phase:       PhaseComplete,
		Chunk:       total,
		TotalChunks: total,
		Address:     req.Offset + req.Length - size,
		BytesRead:   stats.Bytes,
		Retries:     stats.Retries,
		Percentage:  100,
		ElapsedTime: stats.Elapsed,
	})

	r.logInfo("transfer complete",
		"chunks", stats.Chunks,
		"bytes", stats.Bytes,
		"retries", stats.Retries,
		"elapsed", stats.Elapsed.String(),
	)

	return stats, nil
}

// TransferToFile runs Transfer into the file at path, creating or truncating
// it once the request is known to be valid. The file is flushed and closed
// whether or not the transfer succeeds.
func (r *Reader) TransferToFile(ctx context.Context, req Request, path string) (stats Stats, err error) {
	if err := req.Validate(); err != nil {
		return Stats{}, err
	}

	f, err := os.Create(path)
	if err != nil {
		return Stats{}, fmt.Errorf("could not create output file: %w", err)
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = fmt.Errorf("could not close output file: %w", e)
		}
	}()

	w := bufio.NewWriter(f)
	defer func() {
		if e := w.Flush(); e != nil && err == nil {
			err = fmt.Errorf("could not flush output file: %w", e)
		}
	}()

	return r.Transfer(ctx, req, w)
}
