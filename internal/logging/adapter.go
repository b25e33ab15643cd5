package logging

import "github.com/rs/zerolog"

// Adapter forwards Debug/Info/Warn/Error calls with alternating key-value
// pairs to a zerolog.Logger. It satisfies bridge.Logger and memdump.Logger.
type Adapter struct {
	logger zerolog.Logger
}

// NewAdapter wraps l.
func NewAdapter(l zerolog.Logger) *Adapter {
	return &Adapter{logger: l}
}

func (a *Adapter) Debug(msg string, keysAndValues ...interface{}) {
	emit(a.logger.Debug(), msg, keysAndValues)
}

func (a *Adapter) Info(msg string, keysAndValues ...interface{}) {
	emit(a.logger.Info(), msg, keysAndValues)
}

func (a *Adapter) Warn(msg string, keysAndValues ...interface{}) {
	emit(a.logger.Warn(), msg, keysAndValues)
}

func (a *Adapter) Error(msg string, keysAndValues ...interface{}) {
	emit(a.logger.Error(), msg, keysAndValues)
}

// emit is a no-op for a nil event, i.e. a disabled level.
func emit(e *zerolog.Event, msg string, keysAndValues []interface{}) {
	if e == nil {
		return
	}
	if len(keysAndValues) > 0 {
		e = e.Fields(keysAndValues)
	}
	e.Msg(msg)
}
