// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Layer file and env providers over defaults in Load.
// - External errors are wrapped via this package's sentinel kinds.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output from text to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// TaskSeedFile points at a YAML file of competition definitions loaded
	// into the task store on boot. Empty means no seeding.
	TaskSeedFile string `koanf:"task_seed_file"`

	// DefaultMaxPerDay is the daily submission quota for tasks that do not
	// configure their own.
	DefaultMaxPerDay int `koanf:"default_max_per_day" validate:"gte=1"`

	// MaxUploadBytes caps the size of one submission file.
	MaxUploadBytes int64 `koanf:"max_upload_bytes" validate:"gte=1024"`

	// Storage selects the submission store backend.
	Storage string `koanf:"storage" validate:"oneof=memory postgres"`

	// PostgresDSN is required when Storage is postgres.
	PostgresDSN string `koanf:"postgres_dsn" validate:"required_if=Storage postgres"`

	// SandboxImage is the container image used for custom scoring runs.
	SandboxImage string `koanf:"sandbox_image" validate:"required"`

	// SandboxTimeoutMS bounds one custom scoring run, wall clock.
	SandboxTimeoutMS int `koanf:"sandbox_timeout_ms" validate:"gte=100"`

	// SandboxMemoryMB caps custom scorer container memory.
	SandboxMemoryMB int `koanf:"sandbox_memory_mb" validate:"gte=16"`
}

// New creates a Config holding the process defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogJSON:          false,
		Addr:             ":9090",
		TaskSeedFile:     "",
		DefaultMaxPerDay: 5,
		MaxUploadBytes:   32 << 20, // 32 MiB
		Storage:          "memory",
		SandboxImage:     "python:3.12-alpine",
		SandboxTimeoutMS: 10_000,
		SandboxMemoryMB:  256,
	}
}
