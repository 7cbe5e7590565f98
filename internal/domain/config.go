package domain

import (
	"fmt"
	"time"
)

// FailOn decides which severities make shotlint exit non-zero.
type FailOn string

const (
	FailOnError   FailOn = "error"
	FailOnWarning FailOn = "warning"
	FailOnNone    FailOn = "none"
)

// ValidFailOn enumerates accepted fail_on values.
var ValidFailOn = []FailOn{FailOnError, FailOnWarning, FailOnNone}

// ValidLogLevels enumerates accepted log_level values.
var ValidLogLevels = []string{"trace", "debug", "info", "warn", "error", "off"}

const (
	DefaultLogLevel      = "warn"
	DefaultPluginTimeout = 30 * time.Second
	DefaultPluginDir     = "~/.vfxvox/plugins"
)

// ToolConfig holds settings loaded from .vfxvox.yaml.
type ToolConfig struct {
	LogLevel  string         `yaml:"log_level"  json:"log_level,omitempty"`
	Sequences SequenceConfig `yaml:"sequences"  json:"sequences"`
	ShotLint  ShotLintConfig `yaml:"shotlint"   json:"shotlint"`
	Plugins   PluginConfig   `yaml:"plugins"    json:"plugins"`
	History   HistoryConfig  `yaml:"history"    json:"history"`
}

// SequenceConfig tunes the frame-sequence analyzer. Pointer types
// distinguish "not specified" from false.
type SequenceConfig struct {
	CheckResolution *bool `yaml:"check_resolution,omitempty" json:"check_resolution,omitempty"`
	CheckBitDepth   *bool `yaml:"check_bit_depth,omitempty"  json:"check_bit_depth,omitempty"`
	Workers         int   `yaml:"workers,omitempty"          json:"workers,omitempty"`
	Detail          bool  `yaml:"detail,omitempty"           json:"detail,omitempty"`
}

// ResolutionEnabled reports the effective check_resolution value.
func (c SequenceConfig) ResolutionEnabled() bool { return c.CheckResolution == nil || *c.CheckResolution }

// BitDepthEnabled reports the effective check_bit_depth value.
func (c SequenceConfig) BitDepthEnabled() bool { return c.CheckBitDepth == nil || *c.CheckBitDepth }

type ShotLintConfig struct {
	FailOn FailOn `yaml:"fail_on,omitempty" json:"fail_on,omitempty"`
}

type PluginConfig struct {
	Dir     string        `yaml:"dir,omitempty"     json:"dir,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

type HistoryConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() ToolConfig {
	return ToolConfig{
		LogLevel:  DefaultLogLevel,
		Sequences: SequenceConfig{Workers: 1},
		ShotLint:  ShotLintConfig{FailOn: FailOnError},
		Plugins:   PluginConfig{Dir: DefaultPluginDir, Timeout: DefaultPluginTimeout},
	}
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c ToolConfig) Validate() error {
	// 1. log_level must be known or empty
	if c.LogLevel != "" && !contains(ValidLogLevels, c.LogLevel) {
		return fmt.Errorf("unknown log_level %q (valid: trace, debug, info, warn, error, off)", c.LogLevel)
	}

	// 2. fail_on must be known or empty
	if c.ShotLint.FailOn != "" && !contains(ValidFailOn, c.ShotLint.FailOn) {
		return fmt.Errorf("unknown shotlint.fail_on %q (valid: error, warning, none)", c.ShotLint.FailOn)
	}

	// 3. workers and timeout cannot be negative
	if c.Sequences.Workers < 0 {
		return fmt.Errorf("sequences.workers = %d (must be >= 0)", c.Sequences.Workers)
	}
	if c.Plugins.Timeout < 0 {
		return fmt.Errorf("plugins.timeout = %s (must be >= 0)", c.Plugins.Timeout)
	}

	return nil
}

// ParseFailOn converts a flag value into a FailOn policy.
func ParseFailOn(s string) (FailOn, error) {
	f := FailOn(s)
	if !contains(ValidFailOn, f) {
		return "", fmt.Errorf("unknown fail-on %q (valid: error, warning, none)", s)
	}
	return f, nil
}

// Fails reports whether result violates the policy.
func (f FailOn) Fails(result *ValidationResult) bool {
	switch f {
	case FailOnNone:
		return false
	case FailOnWarning:
		return result.HasErrors() || result.HasWarnings()
	default:
		return result.HasErrors()
	}
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
