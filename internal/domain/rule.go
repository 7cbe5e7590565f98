package domain

import (
	"fmt"
	"strings"
)

// RuleType selects the variant of a Rule.
type RuleType string

const (
	RuleTypePathPattern   RuleType = "path_pattern"
	RuleTypeFilenameRegex RuleType = "filename_regex"
	RuleTypeFrameSequence RuleType = "frame_sequence"
	RuleTypeMustExist     RuleType = "must_exist"
	RuleTypePlugin        RuleType = "plugin"
)

// ValidRuleTypes enumerates the built-in rule types.
var ValidRuleTypes = []RuleType{
	RuleTypePathPattern,
	RuleTypeFilenameRegex,
	RuleTypeFrameSequence,
	RuleTypeMustExist,
	RuleTypePlugin,
}

const (
	DefaultFrameExt     = ".exr"
	DefaultFramePadding = 4
)

// Rule is one declarative check from a rule file. Only the fields of the
// variant named by Type are meaningful; the others are ignored.
type Rule struct {
	Name     string   `yaml:"name"               json:"name"`
	Type     RuleType `yaml:"type"               json:"type"`
	Severity string   `yaml:"severity,omitempty" json:"severity,omitempty"`

	// path_pattern
	Pattern string            `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Vars    map[string]string `yaml:"vars,omitempty"    json:"vars,omitempty"`

	// filename_regex
	Regex string `yaml:"regex,omitempty" json:"regex,omitempty"`

	// frame_sequence (Pattern may be used instead of folder/base/start/end)
	Folder  string `yaml:"folder,omitempty"  json:"folder,omitempty"`
	Base    string `yaml:"base,omitempty"    json:"base,omitempty"`
	Ext     string `yaml:"ext,omitempty"     json:"ext,omitempty"`
	Start   *int   `yaml:"start,omitempty"   json:"start,omitempty"`
	End     *int   `yaml:"end,omitempty"     json:"end,omitempty"`
	Padding *int   `yaml:"padding,omitempty" json:"padding,omitempty"`

	// must_exist
	Glob string `yaml:"glob,omitempty" json:"glob,omitempty"`

	// plugin
	Module  string         `yaml:"module,omitempty"  json:"module,omitempty"`
	Options map[string]any `yaml:"options,omitempty" json:"options,omitempty"`
}

// RuleSet is the top-level document of a rule file.
type RuleSet struct {
	Rules []Rule `yaml:"rules" json:"rules"`
}

// Validate checks that the set is non-empty and that every rule carries the
// common fields. Variant fields are checked when rules are compiled, since
// the set of known types can be extended.
func (s RuleSet) Validate() error {
	if len(s.Rules) == 0 {
		return NewConfigError("", "rules", "rule file must contain at least one rule")
	}
	for i, r := range s.Rules {
		if err := r.ValidateCommon(); err != nil {
			if r.Name == "" {
				return fmt.Errorf("rules[%d]: %w", i, err)
			}
			return err
		}
	}
	return nil
}

// ValidateCommon checks the fields every rule type shares.
func (r Rule) ValidateCommon() error {
	if strings.TrimSpace(r.Name) == "" {
		return NewConfigError("", "name", "rule name must not be empty")
	}
	if r.Type == "" {
		return NewConfigError(r.Name, "type", "rule type must not be empty")
	}
	if r.Severity != "" {
		if _, err := ParseSeverity(r.Severity); err != nil {
			return &ConfigurationError{Rule: r.Name, Field: "severity", Err: err}
		}
	}
	return nil
}

// Validate checks common and variant-specific fields of a built-in rule type.
func (r Rule) Validate() error {
	if err := r.ValidateCommon(); err != nil {
		return err
	}
	if !IsValidRuleType(r.Type) {
		return NewConfigError(r.Name, "type", "unknown rule type %q", r.Type)
	}

	switch r.Type {
	case RuleTypePathPattern:
		if r.Pattern == "" {
			return NewConfigError(r.Name, "pattern", "path_pattern rule requires 'pattern'")
		}
	case RuleTypeFilenameRegex:
		if r.Regex == "" {
			return NewConfigError(r.Name, "regex", "filename_regex rule requires 'regex'")
		}
	case RuleTypeMustExist:
		if r.Glob == "" {
			return NewConfigError(r.Name, "glob", "must_exist rule requires 'glob'")
		}
	case RuleTypePlugin:
		if r.Module == "" {
			return NewConfigError(r.Name, "module", "plugin rule requires 'module'")
		}
	case RuleTypeFrameSequence:
		return r.validateFrameSequence()
	}
	return nil
}

func (r Rule) validateFrameSequence() error {
	if r.Pattern != "" {
		return nil
	}
	var missing []string
	if r.Folder == "" {
		missing = append(missing, "folder")
	}
	if r.Base == "" {
		missing = append(missing, "base")
	}
	if r.Start == nil {
		missing = append(missing, "start")
	}
	if r.End == nil {
		missing = append(missing, "end")
	}
	if len(missing) > 0 {
		return NewConfigError(r.Name, "", "frame_sequence rule missing required fields (%s)", strings.Join(missing, ", "))
	}
	if *r.Start > *r.End {
		return NewConfigError(r.Name, "start", "start %d is after end %d", *r.Start, *r.End)
	}
	if r.Padding != nil && *r.Padding <= 0 {
		return NewConfigError(r.Name, "padding", "padding must be > 0 (got %d)", *r.Padding)
	}
	return nil
}

// EffectiveSeverity returns the rule's severity override or def.
func (r Rule) EffectiveSeverity(def Severity) Severity {
	if r.Severity == "" {
		return def
	}
	sev, err := ParseSeverity(r.Severity)
	if err != nil {
		return def
	}
	return sev
}

// SequenceSpec returns the frame_sequence fields with defaults applied.
// It must only be called on a validated rule without a Pattern.
func (r Rule) SequenceSpec() FrameSequenceSpec {
	spec := FrameSequenceSpec{
		Folder:  r.Folder,
		Base:    r.Base,
		Ext:     NormalizeExt(r.Ext),
		Padding: DefaultFramePadding,
	}
	if r.Start != nil {
		spec.Start = *r.Start
	}
	if r.End != nil {
		spec.End = *r.End
	}
	if r.Padding != nil {
		spec.Padding = *r.Padding
	}
	return spec
}

// IsValidRuleType reports whether t is a built-in rule type.
func IsValidRuleType(t RuleType) bool {
	for _, v := range ValidRuleTypes {
		if v == t {
			return true
		}
	}
	return false
}

// NormalizeExt applies the default extension and ensures a leading dot.
func NormalizeExt(ext string) string {
	if ext == "" {
		return DefaultFrameExt
	}
	if !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}
