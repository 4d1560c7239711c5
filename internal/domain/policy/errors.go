package policy

import (
	"errors"
	"fmt"
)

// Sentinel kinds for policy errors. All of these are expected, user-facing
// rejection outcomes, not server incidents.
var (
	ErrNotStarted           = errors.New("task has not started")
	ErrEnded                = errors.New("task has ended")
	ErrAnswerUnavailable    = errors.New("task has no answer file")
	ErrScoringNotConfigured = errors.New("task has no scoring code")

	// ErrQuotaExceeded matches typed *QuotaError instances.
	ErrQuotaExceeded = errors.New("daily submission quota exceeded")
)

// QuotaError carries the configured daily limit for display.
type QuotaError struct {
	Limit int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("daily submission quota exceeded: limit %d per day", e.Limit)
}

// Is lets errors.Is(err, ErrQuotaExceeded) match typed instances.
func (e *QuotaError) Is(target error) bool { return target == ErrQuotaExceeded }
