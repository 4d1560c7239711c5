// Package sandbox executes competition-supplied scoring code in an isolated
// container. This is the one place less-trusted logic runs inside the
// scoring path: no network, a memory cap, and a hard wall-clock timeout.
package sandbox

import (
	"context"
	"errors"
)

// Runner executes a scoring script against answer and submission rows and
// returns a finite score.
//
// Any failure attributable to the script itself — raising, printing garbage,
// returning a non-finite value, or exceeding its time or memory bounds —
// surfaces as ErrInvalidScore. Only host-side faults (container runtime
// unreachable) surface as ErrUnavailable.
type Runner interface {
	Run(ctx context.Context, code string, answer, submission []map[string]string) (float64, error)
}

// Sentinel kinds for sandbox errors.
var (
	// ErrInvalidScore marks a scoring script that failed to produce a
	// finite numeric value within its bounds.
	ErrInvalidScore = errors.New("scoring code did not produce a valid score")

	// ErrUnavailable marks a container runtime fault; an infrastructure
	// incident, not a property of the script.
	ErrUnavailable = errors.New("sandbox unavailable")
)
