package bridge

// Logger is an optional logging interface that can be provided to a Session.
// Any structured logger can be adapted to it.
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

func (s *Session) logDebug(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (s *Session) logInfo(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, keysAndValues...)
	}
}
