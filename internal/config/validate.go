package config

import (
	"errors"
	"fmt"

	"github.com/scttfrdmn/readstructure-go/internal/logging"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// ValidationError names the configuration field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrInvalid, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// Validate checks the settings common to every command. Conversion options
// are checked separately when a conversion runs.
func (c *Config) Validate() error {
	if !logging.ValidLevel(c.LogLevel) {
		return &ValidationError{Field: "log-level", Message: fmt.Sprintf("unknown level %q", c.LogLevel)}
	}
	if c.Workers < 0 {
		return &ValidationError{Field: "workers", Message: "must not be negative"}
	}
	if c.BatchSize < 1 {
		return &ValidationError{Field: "batch-size", Message: "must be positive"}
	}
	if c.CompressionLevel < -1 || c.CompressionLevel > 9 {
		return &ValidationError{Field: "compression-level", Message: fmt.Sprintf("%d outside -1..9", c.CompressionLevel)}
	}
	return nil
}
