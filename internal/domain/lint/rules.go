package lint

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain/pattern"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain/plugin"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain/sequence"
)

func builtinCompilers() map[domain.RuleType]Compiler {
	return map[domain.RuleType]Compiler{
		domain.RuleTypePathPattern:   compilePathPattern,
		domain.RuleTypeFilenameRegex: compileFilenameRegex,
		domain.RuleTypeFrameSequence: compileFrameSequence,
		domain.RuleTypeMustExist:     compileMustExist,
		domain.RuleTypePlugin:        compilePlugin,
	}
}

// compilePathPattern: zero matching paths at the template's depth is a
// warning; matches are silent.
func compilePathPattern(rule domain.Rule, deps Deps) (Evaluator, error) {
	m, err := pattern.Compile(rule.Pattern, rule.Vars)
	if err != nil {
		return nil, &domain.ConfigurationError{Rule: rule.Name, Field: "pattern", Err: err}
	}
	severity := rule.EffectiveSeverity(domain.SeverityWarning)

	return EvaluatorFunc(func(_ context.Context, root string) (*domain.ValidationResult, error) {
		result := domain.NewResult()
		match, ok, err := m.Find(root)
		if err != nil {
			return result, fmt.Errorf("walking %s: %w", root, err)
		}
		if ok {
			deps.Logger.Debug("pattern matched", "rule", rule.Name, "path", match.Path, "captures", match.Captures)
			return result, nil
		}

		details := map[string]any{"pattern": rule.Pattern}
		if len(rule.Vars) > 0 {
			details["vars"] = rule.Vars
		}
		result.Add(domain.NewIssue(severity, fmt.Sprintf("No path matched pattern '%s'", rule.Pattern), root, details))
		return result, nil
	}), nil
}

// compileFilenameRegex: a file matches when the regex finds a substring of
// its base name. Only when files were examined and none matched is a
// warning emitted.
func compileFilenameRegex(rule domain.Rule, deps Deps) (Evaluator, error) {
	re, err := regexp.Compile(rule.Regex)
	if err != nil {
		return nil, &domain.ConfigurationError{Rule: rule.Name, Field: "regex", Err: err}
	}
	severity := rule.EffectiveSeverity(domain.SeverityWarning)

	return EvaluatorFunc(func(_ context.Context, root string) (*domain.ValidationResult, error) {
		result := domain.NewResult()
		examined, matched := 0, 0
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return err
				}
				deps.Logger.Debug("skipping unreadable path", "path", path, "error", err)
				return nil
			}
			if d.IsDir() {
				return nil
			}
			examined++
			if re.MatchString(d.Name()) {
				matched++
			}
			return nil
		})
		if err != nil {
			return result, fmt.Errorf("walking %s: %w", root, err)
		}

		deps.Logger.Debug("filename regex evaluated", "rule", rule.Name, "examined", examined, "matched", matched)
		if examined > 0 && matched == 0 {
			result.Add(domain.NewIssue(severity, fmt.Sprintf("No files matched pattern '%s'", rule.Regex), root, map[string]any{
				"regex":          rule.Regex,
				"files_examined": examined,
			}))
		}
		return result, nil
	}), nil
}

// compileMustExist: the glob is relative to root; "**" crosses directories.
func compileMustExist(rule domain.Rule, _ Deps) (Evaluator, error) {
	glob := strings.TrimPrefix(filepath.ToSlash(rule.Glob), "./")
	if !doublestar.ValidatePattern(glob) {
		return nil, domain.NewConfigError(rule.Name, "glob", "invalid glob %q", rule.Glob)
	}
	severity := rule.EffectiveSeverity(domain.SeverityError)

	return EvaluatorFunc(func(_ context.Context, root string) (*domain.ValidationResult, error) {
		result := domain.NewResult()
		matches, err := doublestar.Glob(os.DirFS(root), glob)
		if err != nil {
			return result, fmt.Errorf("expanding glob %q: %w", rule.Glob, err)
		}
		if len(matches) == 0 {
			result.Add(domain.NewIssue(severity, fmt.Sprintf("No matches for glob: %s", rule.Glob), root, map[string]any{
				"glob": rule.Glob,
			}))
		}
		return result, nil
	}), nil
}

// compileFrameSequence: always error severity. A declared folder that is
// missing or not a directory is reported before any frame is checked.
func compileFrameSequence(rule domain.Rule, deps Deps) (Evaluator, error) {
	if rule.Pattern != "" {
		if _, err := sequence.Parse(rule.Pattern); err != nil {
			return nil, &domain.ConfigurationError{Rule: rule.Name, Field: "pattern", Err: err}
		}
		return EvaluatorFunc(func(ctx context.Context, root string) (*domain.ValidationResult, error) {
			p, err := sequence.ParseIn(root, rule.Pattern)
			if err != nil {
				return domain.NewResult(), err
			}
			report, err := deps.Analyzer.Analyze(ctx, p)
			return report.Result, err
		}), nil
	}

	spec := rule.SequenceSpec()
	return EvaluatorFunc(func(ctx context.Context, root string) (*domain.ValidationResult, error) {
		result := domain.NewResult()
		folder := filepath.Join(root, spec.Folder)

		info, err := os.Stat(folder)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			result.Add(domain.NewIssue(domain.SeverityError, fmt.Sprintf("Folder missing: %s", spec.Folder), spec.Folder, map[string]any{
				"rule": rule.Name,
			}))
			return result, nil
		case err != nil:
			return result, fmt.Errorf("checking %s: %w", folder, err)
		case !info.IsDir():
			result.Add(domain.NewIssue(domain.SeverityError, fmt.Sprintf("Path is not a directory: %s", spec.Folder), spec.Folder, map[string]any{
				"rule": rule.Name,
			}))
			return result, nil
		}

		report, err := deps.Analyzer.Analyze(ctx, sequence.FromSpec(root, spec))
		if report == nil {
			return result, err
		}
		return report.Result, err
	}), nil
}

// compilePlugin checks the reference syntax only; resolution happens per run
// so an unavailable plugin becomes an issue rather than a configuration error.
func compilePlugin(rule domain.Rule, deps Deps) (Evaluator, error) {
	if _, err := plugin.ParseReference(rule.Module); err != nil {
		return nil, &domain.ConfigurationError{Rule: rule.Name, Field: "module", Err: err}
	}
	return EvaluatorFunc(func(ctx context.Context, root string) (*domain.ValidationResult, error) {
		return deps.Dispatcher.Dispatch(ctx, rule, root), nil
	}), nil
}
