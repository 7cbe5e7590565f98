package domain

import "context"

// FormatReader extracts header information from an image file. It returns an
// error wrapping ErrUnsupportedFormat when it has no handler for the file; any
// other error means the file is corrupted.
type FormatReader interface {
	ReadHeader(path string) (FrameHeader, error)
}

// RawIssue is a single finding as returned by an external validator, before
// normalization. Recognized keys: level, message, path, rule.
type RawIssue = map[string]any

// ValidatorContext is passed to every external validator call.
type ValidatorContext struct {
	Root    string         `json:"root"`
	Rule    string         `json:"rule"`
	Options map[string]any `json:"options,omitempty"`
}

// ExternalValidator is validation logic supplied from outside the engine.
type ExternalValidator interface {
	Validate(ctx context.Context, vctx ValidatorContext) ([]RawIssue, error)
}

// ValidatorFunc adapts a plain function to ExternalValidator.
type ValidatorFunc func(ctx context.Context, vctx ValidatorContext) ([]RawIssue, error)

func (f ValidatorFunc) Validate(ctx context.Context, vctx ValidatorContext) ([]RawIssue, error) {
	return f(ctx, vctx)
}

// PluginRef names an external validator as "module.path:callable".
type PluginRef struct {
	Module   string
	Callable string
}

func (r PluginRef) String() string { return r.Module + ":" + r.Callable }

// ValidatorResolver turns a plugin reference into a callable validator.
type ValidatorResolver interface {
	Resolve(ref PluginRef) (ExternalValidator, error)
}

// RuleLoader reads a rule file.
type RuleLoader interface {
	Load(path string) ([]Rule, error)
}

// ConfigLoader reads the tool configuration.
type ConfigLoader interface {
	Load(path string) (ToolConfig, error)
}

// GitInfo reports version control state for result metadata.
type GitInfo interface {
	IsGitRepo(path string) bool
	CommitHash(path string) (string, error)
	IsDirty(path string) (bool, error)
}

// RunHistory persists a summary of each validation run.
type RunHistory interface {
	Save(path string, entry RunEntry) error
	Load(path string) ([]RunEntry, error)
}
