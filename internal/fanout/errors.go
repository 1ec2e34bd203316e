package fanout

import (
	"errors"
	"fmt"

	"github.com/anonto42/insyd/backend/internal/models"
)

// ErrFanOutFailed matches every error returned by Engine operations.
var ErrFanOutFailed = errors.New("fan-out failed")

// Error reports a fan-out that could not be completed. The notification log
// is left unchanged when it is returned.
type Error struct {
	Verb models.Verb
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fan-out %s failed: %v", e.Verb, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{ErrFanOutFailed, e.Err}
}
