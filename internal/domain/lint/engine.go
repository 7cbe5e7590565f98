// Package lint evaluates declarative rules against a directory tree.
package lint

import (
	"context"
	"fmt"
	"slices"

	"github.com/hashicorp/go-hclog"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain/plugin"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain/sequence"
)

// DefaultValidatorName is written to result metadata when none is set.
const DefaultValidatorName = "shotlint"

// Evaluator is one compiled rule.
type Evaluator interface {
	Evaluate(ctx context.Context, root string) (*domain.ValidationResult, error)
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(ctx context.Context, root string) (*domain.ValidationResult, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, root string) (*domain.ValidationResult, error) {
	return f(ctx, root)
}

// Deps are the collaborators a Compiler may use.
type Deps struct {
	Analyzer   *sequence.Analyzer
	Dispatcher *plugin.Dispatcher
	Logger     hclog.Logger
}

// Compiler validates a rule and turns it into an Evaluator. Invalid rules
// must be reported as *domain.ConfigurationError.
type Compiler func(rule domain.Rule, deps Deps) (Evaluator, error)

// CompiledRule pairs a rule with its evaluator.
type CompiledRule struct {
	Rule      domain.Rule
	Evaluator Evaluator
}

// Engine evaluates rules strictly in order. It keeps no state between runs
// and may be shared by concurrent callers once configured.
type Engine struct {
	name      string
	compilers map[domain.RuleType]Compiler
	deps      Deps
}

// Option configures an Engine.
type Option func(*Engine)

// WithName sets the "validator" metadata value.
func WithName(name string) Option {
	return func(e *Engine) { e.name = name }
}

// WithAnalyzer sets the analyzer used by frame_sequence rules.
func WithAnalyzer(a *sequence.Analyzer) Option {
	return func(e *Engine) { e.deps.Analyzer = a }
}

// WithDispatcher sets the dispatcher used by plugin rules.
func WithDispatcher(d *plugin.Dispatcher) Option {
	return func(e *Engine) { e.deps.Dispatcher = d }
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(e *Engine) { e.deps.Logger = l }
}

// New creates an Engine with the built-in rule types registered. Without
// WithAnalyzer, frame_sequence rules use an analyzer with no format reader;
// without WithDispatcher, plugin rules report that plugin support is
// unavailable.
func New(opts ...Option) *Engine {
	e := &Engine{
		name:      DefaultValidatorName,
		compilers: builtinCompilers(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.deps.Logger == nil {
		e.deps.Logger = hclog.NewNullLogger()
	}
	if e.deps.Analyzer == nil {
		e.deps.Analyzer = sequence.NewAnalyzer(sequence.Options{Logger: e.deps.Logger})
	}
	if e.deps.Dispatcher == nil {
		e.deps.Dispatcher = plugin.NewDispatcher(nil, 0, e.deps.Logger)
	}
	return e
}

// Register adds or replaces the compiler for a rule type.
func (e *Engine) Register(t domain.RuleType, c Compiler) {
	e.compilers[t] = c
}

// RuleTypes lists the registered rule types, built-ins first.
func (e *Engine) RuleTypes() []domain.RuleType {
	var custom []domain.RuleType
	for t := range e.compilers {
		if !domain.IsValidRuleType(t) {
			custom = append(custom, t)
		}
	}
	slices.Sort(custom)
	return append(slices.Clone(domain.ValidRuleTypes), custom...)
}

// Compile validates and compiles every rule, failing on the first
// configuration error. Nothing is evaluated.
func (e *Engine) Compile(rules []domain.Rule) ([]CompiledRule, error) {
	if len(rules) == 0 {
		return nil, domain.NewConfigError("", "rules", "at least one rule is required")
	}

	compiled := make([]CompiledRule, 0, len(rules))
	for _, r := range rules {
		if err := r.ValidateCommon(); err != nil {
			return nil, err
		}
		compile, ok := e.compilers[r.Type]
		if !ok {
			return nil, domain.NewConfigError(r.Name, "type", "unknown rule type %q", r.Type)
		}
		if domain.IsValidRuleType(r.Type) {
			if err := r.Validate(); err != nil {
				return nil, err
			}
		}

		ev, err := compile(r, e.deps)
		if err != nil {
			if domain.IsConfigurationError(err) {
				return nil, err
			}
			return nil, &domain.ConfigurationError{Rule: r.Name, Err: err}
		}
		compiled = append(compiled, CompiledRule{Rule: r, Evaluator: ev})
	}
	return compiled, nil
}

// Validate compiles rules and evaluates them against root. Only
// configuration errors are returned; everything else is an issue.
func (e *Engine) Validate(ctx context.Context, root string, rules []domain.Rule) (*domain.ValidationResult, error) {
	compiled, err := e.Compile(rules)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, root, compiled), nil
}

// Run evaluates compiled rules in order and merges their results. A rule's
// runtime error is recorded as an issue and later rules still run. If ctx
// ends, the remaining rules are skipped and the result is marked failed.
func (e *Engine) Run(ctx context.Context, root string, compiled []CompiledRule) *domain.ValidationResult {
	log := e.deps.Logger
	result := domain.NewResult()
	result.SetMetadata("validator", e.name)
	result.SetMetadata("root", root)
	result.SetMetadata("rule_count", len(compiled))

	for i, c := range compiled {
		if err := ctx.Err(); err != nil {
			result.Add(interrupted(err, i, len(compiled)))
			break
		}

		log.Debug("evaluating rule", "rule", c.Rule.Name, "type", c.Rule.Type)
		partial, err := c.Evaluator.Evaluate(ctx, root)
		result.Merge(partial)

		if err != nil {
			if ctx.Err() != nil {
				result.Add(interrupted(err, i, len(compiled)))
				break
			}
			log.Error("rule execution failed", "rule", c.Rule.Name, "error", err)
			result.Add(domain.NewIssue(domain.SeverityError,
				fmt.Sprintf("Rule execution failed: %s", err),
				c.Rule.Name,
				map[string]any{"rule": c.Rule.Name, "type": string(c.Rule.Type)},
			))
		}
	}

	log.Info("validation complete", "root", root, "errors", result.ErrorCount(), "warnings", result.WarningCount())
	return result
}

func interrupted(err error, completed, total int) domain.ValidationIssue {
	return domain.NewIssue(domain.SeverityError,
		fmt.Sprintf("Validation interrupted: %s", err),
		"",
		map[string]any{"completed_rules": completed, "rule_count": total},
	)
}
