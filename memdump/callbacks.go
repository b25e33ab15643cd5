package memdump

import "time"

// Progress phases.
const (
	PhaseReading  = "reading"
	PhaseRetrying = "retrying"
	PhaseComplete = "complete"
)

// Progress contains information about a running transfer.
// Passed to ProgressCallback during Transfer.
type Progress struct {
	// Phase describes the current operation phase:
	//   "reading"  - Requesting the chunk at Address
	//   "retrying" - The chunk at Address came back short and is requested again
	//   "complete" - Every chunk was written to the sink
	Phase string

	// Chunk is the number of chunks completed so far
	Chunk int

	// TotalChunks is the number of chunks in the request
	TotalChunks int

	// Address is the instrument address of the current chunk
	Address uint32

	// BytesRead is the number of payload bytes written to the sink so far
	BytesRead int

	// Retries is the number of short reads retried so far
	Retries int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// ElapsedTime is the time elapsed since the transfer started
	ElapsedTime time.Duration
}

// ProgressCallback is called once per chunk and once per retry.
// Implementations should return quickly; the bridge is idle while it runs.
//
// Example:
//
//	r := memdump.New(session,
//	    memdump.WithProgressCallback(func(p memdump.Progress) {
//	        fmt.Printf("[%s] %.1f%% - 0x%08X\n", p.Phase, p.Percentage, p.Address)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the reader.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Warn(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	r := memdump.New(session, memdump.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Warn logs a warning message with optional key-value pairs
	Warn(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
