package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

// RulesLoader implements domain.RuleLoader for YAML rule files with a
// top-level "rules:" list. Unknown keys are ignored.
type RulesLoader struct{}

// NewRulesLoader creates a RulesLoader.
func NewRulesLoader() *RulesLoader { return &RulesLoader{} }

// Load parses the rule file at path. Structural problems are returned as
// *domain.ConfigurationError.
func (l *RulesLoader) Load(path string) ([]domain.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.NewConfigError("", "", "rule file not found: %s", path)
		}
		return nil, fmt.Errorf("reading rule file: %w", err)
	}
	return l.Parse(data)
}

// Parse decodes rule file contents.
func (l *RulesLoader) Parse(data []byte) ([]domain.Rule, error) {
	var set domain.RuleSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, &domain.ConfigurationError{Err: fmt.Errorf("parsing rule file: %w", err)}
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set.Rules, nil
}
