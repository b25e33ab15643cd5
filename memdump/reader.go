package memdump

import (
	"context"
	"fmt"

	"github.com/moffa90/go-tdsbackup/protocol"
	"github.com/moffa90/go-tdsbackup/retry"
)

// Bridge is the part of a bridge session the reader needs.
// *bridge.Session implements it.
type Bridge interface {
	// SendLine writes p followed by the instruction terminator
	SendLine(p []byte) error

	// SendTrigger asks the bridge to relay the instrument's response
	SendTrigger() error

	// ReadExactly reads n bytes, returning a *protocol.ShortReadError and
	// the bytes received so far if the read timeout expires first
	ReadExactly(n int) ([]byte, error)
}

// Chunk is one verified block of instrument memory.
type Chunk struct {
	Address uint32
	Payload []byte
}

// Reader dumps instrument memory through a bridge, one chunk at a time.
//
// Reader is not safe for concurrent use: the bridge handles exactly one
// request at a time.
type Reader struct {
	bridge Bridge
	config Config
}

// New creates a new Reader on an initialized bridge.
//
// Example:
//
//	s, _ := bridge.Open("/dev/ttyUSB0")
//	_ = s.Init(ctx)
//	r := memdump.New(s,
//	    memdump.WithLogger(logger),
//	    memdump.WithRetryPolicy(retry.Default()),
//	)
func New(b Bridge, opts ...Option) *Reader {
	if b == nil {
		panic("bridge cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Reader{
		bridge: b,
		config: cfg,
	}
}

// ReadChunk reads length bytes of instrument memory at addr:
//  1. Send the escaped read memory command and trigger the read
//  2. Read and validate the response header
//  3. Read the payload and verify its checksum
//  4. Acknowledge the chunk
//
// A short payload resends the identical command until the retry policy gives
// up with a *RetriesExhaustedError. Framing errors, a truncated header
// included, and checksum errors are returned at once.
func (r *Reader) ReadChunk(ctx context.Context, addr, length uint32) (*Chunk, error) {
	chunk, _, err := r.readChunk(ctx, addr, length, nil)
	return chunk, err
}

// readChunk is ReadChunk reporting the number of retries. onRetry, when set,
// is called before every resend.
func (r *Reader) readChunk(ctx context.Context, addr, length uint32, onRetry func(attempt int)) (*Chunk, int, error) {
	if length == 0 || length > protocol.MaxPayloadSize {
		return nil, 0, &ChunkSizeError{ChunkSize: length, Max: protocol.MaxPayloadSize}
	}

	cmd := protocol.Escape(protocol.BuildReadMemoryCmd(addr, length))
	policy := r.config.Retry

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, attempt - 1, err
		}

		payload, err := r.request(cmd, length)
		if err == nil {
			return &Chunk{Address: addr, Payload: payload}, attempt - 1, nil
		}
		if !protocol.IsShortRead(err) {
			r.logError("chunk read failed",
				"address", fmt.Sprintf("0x%08X", addr),
				"error", err,
			)
			return nil, attempt - 1, err
		}

		r.logWarn("short read, retrying",
			"address", fmt.Sprintf("0x%08X", addr),
			"attempt", attempt,
			"error", err,
		)

		if policy.Exhausted(attempt) {
			return nil, attempt - 1, &RetriesExhaustedError{
				Address:  addr,
				Attempts: attempt,
				Err:      err,
			}
		}
		if err := retry.Wait(ctx, policy.Delay(attempt)); err != nil {
			return nil, attempt - 1, err
		}
		if onRetry != nil {
			onRetry(attempt)
		}
	}
}

// request performs one command/response exchange and returns the verified payload.
func (r *Reader) request(cmd []byte, length uint32) ([]byte, error) {
	if err := r.bridge.SendLine(cmd); err != nil {
		return nil, fmt.Errorf("send read memory command: %w", err)
	}
	if err := r.bridge.SendTrigger(); err != nil {
		return nil, fmt.Errorf("trigger read: %w", err)
	}

	// a truncated header is a framing error, only the payload is retried
	raw, err := r.bridge.ReadExactly(protocol.ResponseHeaderSize)
	if err != nil && !protocol.IsShortRead(err) {
		return nil, fmt.Errorf("read header: %w", err)
	}

	hdr, err := protocol.ParseResponseHeader(raw)
	if err != nil {
		return nil, err
	}
	if err := protocol.ValidateResponseLength(hdr, length); err != nil {
		return nil, err
	}

	payload, err := r.bridge.ReadExactly(int(length))
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}

	if err := protocol.VerifyPayload(hdr, payload); err != nil {
		return nil, err
	}

	if err := r.bridge.SendLine(protocol.Escape([]byte{protocol.Ack})); err != nil {
		return nil, fmt.Errorf("acknowledge: %w", err)
	}

	return payload, nil
}

// reportProgress calls the progress callback if configured.
func (r *Reader) reportProgress(progress Progress) {
	if r.config.ProgressCallback != nil {
		r.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (r *Reader) logDebug(msg string, keysAndValues ...interface{}) {
	if r.config.Logger != nil {
		r.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (r *Reader) logInfo(msg string, keysAndValues ...interface{}) {
	if r.config.Logger != nil {
		r.config.Logger.Info(msg, keysAndValues...)
	}
}

// logWarn logs a warning message if a logger is configured.
func (r *Reader) logWarn(msg string, keysAndValues ...interface{}) {
	if r.config.Logger != nil {
		r.config.Logger.Warn(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (r *Reader) logError(msg string, keysAndValues ...interface{}) {
	if r.config.Logger != nil {
		r.config.Logger.Error(msg, keysAndValues...)
	}
}
