package storage

import "errors"

// Sentinel kinds for storage errors.
var (
	// ErrTaskNotFound marks a lookup for an unknown task id.
	ErrTaskNotFound = errors.New("task not found")

	// ErrBlobNotFound marks a download for a path with no stored content.
	ErrBlobNotFound = errors.New("blob not found")

	// ErrStorage marks transient infrastructure failures; safe to retry.
	ErrStorage = errors.New("storage failure")
)
