package domain

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Severity classifies a ValidationIssue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ValidSeverities enumerates all recognized severities, most severe first.
var ValidSeverities = []Severity{SeverityError, SeverityWarning, SeverityInfo}

// ParseSeverity converts a user supplied level into a Severity.
func ParseSeverity(s string) (Severity, error) {
	for _, sev := range ValidSeverities {
		if string(sev) == s {
			return sev, nil
		}
	}
	return "", fmt.Errorf("unknown severity %q (valid: error, warning, info)", s)
}

// Rank orders severities for sorting: error < warning < info.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// ValidationIssue is a single finding produced by a rule or a tool.
// Build issues with NewIssue; the details map is owned by the issue.
type ValidationIssue struct {
	Severity Severity       `json:"severity"           yaml:"severity"`
	Message  string         `json:"message"            yaml:"message"`
	Location string         `json:"location,omitempty" yaml:"location,omitempty"`
	Details  map[string]any `json:"details,omitempty"  yaml:"details,omitempty"`
}

// NewIssue creates an issue, copying details so later mutation by the caller
// cannot change it.
func NewIssue(severity Severity, message, location string, details map[string]any) ValidationIssue {
	var d map[string]any
	if len(details) > 0 {
		d = maps.Clone(details)
	}
	return ValidationIssue{
		Severity: severity,
		Message:  message,
		Location: location,
		Details:  d,
	}
}

// Detail returns a details value and whether it was present.
func (i ValidationIssue) Detail(key string) (any, bool) {
	v, ok := i.Details[key]
	return v, ok
}

// ValidationResult aggregates the issues of one validation run.
// Passed is derived from the issues; nothing is cached.
type ValidationResult struct {
	Issues   []ValidationIssue `json:"issues"   yaml:"issues"`
	Metadata map[string]any    `json:"metadata" yaml:"metadata"`
}

// NewResult returns an empty result with initialized metadata.
func NewResult() *ValidationResult {
	return &ValidationResult{Metadata: make(map[string]any)}
}

// Add appends issues in order.
func (r *ValidationResult) Add(issues ...ValidationIssue) {
	r.Issues = append(r.Issues, issues...)
}

// SetMetadata overwrites a metadata key.
func (r *ValidationResult) SetMetadata(key string, value any) {
	if r.Metadata == nil {
		r.Metadata = make(map[string]any)
	}
	r.Metadata[key] = value
}

// Merge appends other's issues after r's and unions the metadata. Keys already
// present in r are kept.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	r.Issues = append(r.Issues, other.Issues...)
	for k, v := range other.Metadata {
		if _, exists := r.Metadata[k]; exists {
			continue
		}
		r.SetMetadata(k, v)
	}
}

func (r *ValidationResult) Passed() bool { return r.ErrorCount() == 0 }

func (r *ValidationResult) HasErrors() bool   { return r.ErrorCount() > 0 }
func (r *ValidationResult) HasWarnings() bool { return r.WarningCount() > 0 }

func (r *ValidationResult) ErrorCount() int   { return r.count(SeverityError) }
func (r *ValidationResult) WarningCount() int { return r.count(SeverityWarning) }
func (r *ValidationResult) InfoCount() int    { return r.count(SeverityInfo) }

// Errors returns the error issues in evaluation order.
func (r *ValidationResult) Errors() []ValidationIssue { return r.filter(SeverityError) }

// Warnings returns the warning issues in evaluation order.
func (r *ValidationResult) Warnings() []ValidationIssue { return r.filter(SeverityWarning) }

func (r *ValidationResult) count(sev Severity) int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == sev {
			n++
		}
	}
	return n
}

func (r *ValidationResult) filter(sev Severity) []ValidationIssue {
	var out []ValidationIssue
	for _, i := range r.Issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

// resultView is the serialized form, carrying the derived fields renderers need.
type resultView struct {
	Passed       bool              `json:"passed"        yaml:"passed"`
	ErrorCount   int               `json:"error_count"   yaml:"error_count"`
	WarningCount int               `json:"warning_count" yaml:"warning_count"`
	InfoCount    int               `json:"info_count"    yaml:"info_count"`
	Issues       []ValidationIssue `json:"issues"        yaml:"issues"`
	Metadata     map[string]any    `json:"metadata"      yaml:"metadata"`
}

func (r *ValidationResult) view() resultView {
	issues := r.Issues
	if issues == nil {
		issues = []ValidationIssue{}
	}
	return resultView{
		Passed:       r.Passed(),
		ErrorCount:   r.ErrorCount(),
		WarningCount: r.WarningCount(),
		InfoCount:    r.InfoCount(),
		Issues:       issues,
		Metadata:     r.Metadata,
	}
}

func (r *ValidationResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.view())
}

func (r *ValidationResult) UnmarshalJSON(data []byte) error {
	var v resultView
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	r.Issues = v.Issues
	r.Metadata = v.Metadata
	return nil
}

func (r *ValidationResult) MarshalYAML() (any, error) {
	return r.view(), nil
}
