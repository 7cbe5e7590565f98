package domain_test

import (
	"testing"
	"time"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := domain.DefaultConfig()
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, domain.FailOnError, cfg.ShotLint.FailOn)
	assert.Equal(t, 30*time.Second, cfg.Plugins.Timeout)
	assert.Equal(t, 1, cfg.Sequences.Workers)
	assert.True(t, cfg.Sequences.ResolutionEnabled())
	assert.True(t, cfg.Sequences.BitDepthEnabled())
	assert.False(t, cfg.History.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestToolConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.ToolConfig)
		wantErr string
	}{
		{"bad log level", func(c *domain.ToolConfig) { c.LogLevel = "loud" }, "log_level"},
		{"bad fail_on", func(c *domain.ToolConfig) { c.ShotLint.FailOn = "always" }, "fail_on"},
		{"negative workers", func(c *domain.ToolConfig) { c.Sequences.Workers = -1 }, "workers"},
		{"negative timeout", func(c *domain.ToolConfig) { c.Plugins.Timeout = -time.Second }, "timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSequenceConfig_ExplicitFalse(t *testing.T) {
	off := false
	cfg := domain.SequenceConfig{CheckResolution: &off}
	assert.False(t, cfg.ResolutionEnabled())
	assert.True(t, cfg.BitDepthEnabled())
}

func TestFailOn_Fails(t *testing.T) {
	warnOnly := domain.NewResult()
	warnOnly.Add(domain.NewIssue(domain.SeverityWarning, "w", "", nil))

	assert.False(t, domain.FailOnError.Fails(warnOnly))
	assert.True(t, domain.FailOnWarning.Fails(warnOnly))
	assert.False(t, domain.FailOnNone.Fails(warnOnly))

	_, err := domain.ParseFailOn("sometimes")
	assert.Error(t, err)
	f, err := domain.ParseFailOn("warning")
	assert.NoError(t, err)
	assert.Equal(t, domain.FailOnWarning, f)
}
