package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

// FileName is the tool configuration file looked up in a directory.
const FileName = ".vfxvox.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .vfxvox.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .vfxvox.yaml from dir.
// Returns DefaultConfig if the file does not exist.
func (l *YAMLLoader) Load(dir string) (domain.ToolConfig, error) {
	return l.LoadFile(filepath.Join(dir, FileName))
}

// LoadFile reads the configuration from an explicit path. A missing file
// yields DefaultConfig.
func (l *YAMLLoader) LoadFile(path string) (domain.ToolConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.ToolConfig{}, err
	}

	var cfg domain.ToolConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.ToolConfig{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	// Validate before merging so typos in the user's file are reported.
	if err := cfg.Validate(); err != nil {
		return domain.ToolConfig{}, fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}

	return mergeConfig(domain.DefaultConfig(), cfg), nil
}

// mergeConfig overlays explicit values on top of the defaults.
// Explicit (non-zero) values always win.
func mergeConfig(base, override domain.ToolConfig) domain.ToolConfig {
	result := base

	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}

	if override.Sequences.CheckResolution != nil {
		result.Sequences.CheckResolution = override.Sequences.CheckResolution
	}
	if override.Sequences.CheckBitDepth != nil {
		result.Sequences.CheckBitDepth = override.Sequences.CheckBitDepth
	}
	if override.Sequences.Workers > 0 {
		result.Sequences.Workers = override.Sequences.Workers
	}
	result.Sequences.Detail = override.Sequences.Detail

	if override.ShotLint.FailOn != "" {
		result.ShotLint.FailOn = override.ShotLint.FailOn
	}

	if override.Plugins.Dir != "" {
		result.Plugins.Dir = override.Plugins.Dir
	}
	if override.Plugins.Timeout > 0 {
		result.Plugins.Timeout = override.Plugins.Timeout
	}

	result.History = override.History

	return result
}
