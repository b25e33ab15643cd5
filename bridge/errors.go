package bridge

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned when a bus operation is attempted before Init.
var ErrNotInitialized = errors.New("bridge session is not initialized")

// BringUpTimeoutError indicates that the bridge never answered the version query.
type BringUpTimeoutError struct {
	Attempts int
}

func (e *BringUpTimeoutError) Error() string {
	return fmt.Sprintf("bridge did not respond to %s after %d attempts", CmdVersion, e.Attempts)
}
