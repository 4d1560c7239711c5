package tabular

import "errors"

// Sentinel kinds for tabular errors. Callers match with errors.Is.
var (
	// ErrFormat marks structurally invalid CSV input: too few rows, ragged
	// records, or unparsable quoting.
	ErrFormat = errors.New("malformed submission file")
)
