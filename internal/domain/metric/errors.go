package metric

import (
	"errors"
	"fmt"
)

// Sentinel kinds for evaluator errors. Callers match with errors.Is/As.
var (
	// ErrUnknownMetric marks a metric name outside the closed set.
	ErrUnknownMetric = errors.New("unknown evaluation metric")

	// ErrInvalidNumeric marks non-numeric cell data handed to a numeric
	// evaluator.
	ErrInvalidNumeric = errors.New("invalid numeric value")

	// ErrDimensionMismatch marks predicted/actual sequences of differing
	// length. Concrete instances are *DimensionError carrying both counts.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidScore marks a custom scorer that returned a non-finite or
	// unparsable value, raised an error, or exceeded its resource bounds.
	ErrInvalidScore = errors.New("invalid custom score")
)

// DimensionError reports both observed row counts so callers can render
// "submission has N rows, expected M".
type DimensionError struct {
	Got  int // rows in the submission
	Want int // rows in the answer file
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: submission has %d rows, expected %d", e.Got, e.Want)
}

// Is lets errors.Is(err, ErrDimensionMismatch) match typed instances.
func (e *DimensionError) Is(target error) bool { return target == ErrDimensionMismatch }
