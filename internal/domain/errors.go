package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrRootNotFound is returned when the directory to validate does not exist.
	ErrRootNotFound = errors.New("root directory not found")

	// ErrUnsupportedFormat is returned by a FormatReader that has no handler
	// for a file's extension. It is not a corruption.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrCorruptedFrame marks a frame whose header could not be read.
	ErrCorruptedFrame = errors.New("corrupted frame")
)

// ConfigurationError reports a malformed rule file, an unknown rule type or an
// invalid pattern. It is fatal to the run that triggered it.
type ConfigurationError struct {
	Rule  string // rule name, empty for file-level problems
	Field string // offending key, if any
	Err   error
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Rule != "" && e.Field != "":
		return fmt.Sprintf("rule %q: %s: %v", e.Rule, e.Field, e.Err)
	case e.Rule != "":
		return fmt.Sprintf("rule %q: %v", e.Rule, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// NewConfigError builds a ConfigurationError from a formatted message.
func NewConfigError(rule, field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Rule: rule, Field: field, Err: fmt.Errorf(format, args...)}
}

// IsConfigurationError reports whether err is, or wraps, a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
