package config

import "errors"

// Sentinel error kinds for this package. Callers match with errors.Is.
var (
	// ErrLoadConfig marks a failure reading or decoding config sources.
	ErrLoadConfig = errors.New("load config failed")

	// ErrInvalidConfig marks a loaded config that failed validation.
	ErrInvalidConfig = errors.New("invalid config")
)
