// Package plugin invokes externally supplied validators and converts what
// they return into validation issues.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"runtime/debug"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

// DefaultCallable is used when a reference has no ":callable" part.
const DefaultCallable = "validate"

const defaultMessage = "Plugin reported an issue"

// ErrNoResolver is reported when plugin rules run without a resolver.
var ErrNoResolver = errors.New("no validator resolver configured")

// ParseReference splits "module.path:callable". Without a colon the callable
// defaults to DefaultCallable.
func ParseReference(s string) (domain.PluginRef, error) {
	s = strings.TrimSpace(s)
	module, callable, found := strings.Cut(s, ":")
	if !found {
		callable = DefaultCallable
	}
	if module == "" {
		return domain.PluginRef{}, fmt.Errorf("invalid plugin reference %q: empty module", s)
	}
	if callable == "" {
		return domain.PluginRef{}, fmt.Errorf("invalid plugin reference %q: empty callable", s)
	}
	return domain.PluginRef{Module: module, Callable: callable}, nil
}

// Dispatcher resolves and runs external validators. Every failure becomes a
// single error issue; Dispatch never returns an error.
type Dispatcher struct {
	resolver domain.ValidatorResolver
	timeout  time.Duration
	logger   hclog.Logger
}

// NewDispatcher creates a Dispatcher. A nil resolver is allowed; plugin rules
// then report that plugin support is unavailable. timeout <= 0 disables the
// per-call deadline.
func NewDispatcher(resolver domain.ValidatorResolver, timeout time.Duration, logger hclog.Logger) *Dispatcher {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Dispatcher{resolver: resolver, timeout: timeout, logger: logger.Named("plugin")}
}

// Dispatch runs the validator referenced by rule.Module against root.
func (d *Dispatcher) Dispatch(ctx context.Context, rule domain.Rule, root string) *domain.ValidationResult {
	result := domain.NewResult()

	ref, err := ParseReference(rule.Module)
	if err != nil {
		result.Add(loadFailure(rule, root, err))
		return result
	}

	// 1. Resolve
	if d.resolver == nil {
		d.logger.Warn("plugin rule skipped", "rule", rule.Name, "reference", ref.String(), "error", ErrNoResolver)
		result.Add(domain.NewIssue(domain.SeverityError, "Plugin support unavailable", root, map[string]any{
			"module": ref.String(),
			"rule":   rule.Name,
			"error":  ErrNoResolver.Error(),
		}))
		return result
	}
	validator, err := d.resolver.Resolve(ref)
	if err != nil {
		d.logger.Error("failed to load plugin", "reference", ref.String(), "error", err)
		result.Add(loadFailure(rule, root, err))
		return result
	}

	// 2. Invoke
	raw, err := d.invoke(ctx, validator, domain.ValidatorContext{
		Root:    root,
		Rule:    rule.Name,
		Options: maps.Clone(rule.Options),
	})
	if err != nil {
		result.Add(d.failureIssue(rule, ref, root, err))
		return result
	}

	// 3. Normalize
	for _, r := range raw {
		result.Add(d.Normalize(r))
	}
	d.logger.Debug("plugin finished", "reference", ref.String(), "issues", len(raw))
	return result
}

// timeoutError carries the configured deadline for the issue message.
type timeoutError struct{ after time.Duration }

func (e timeoutError) Error() string { return fmt.Sprintf("plugin timed out after %s", e.after) }

// panicError wraps a recovered panic value.
type panicError struct{ value any }

func (e panicError) Error() string { return fmt.Sprint(e.value) }

type outcome struct {
	issues []domain.RawIssue
	err    error
}

// invoke runs the validator on its own goroutine so the deadline can be
// enforced even if the validator ignores ctx.
func (d *Dispatcher) invoke(ctx context.Context, v domain.ExternalValidator, vctx domain.ValidatorContext) ([]domain.RawIssue, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				d.logger.Error("plugin panicked", "panic", p, "stack", string(debug.Stack()))
				done <- outcome{err: panicError{value: p}}
			}
		}()
		issues, err := v.Validate(ctx, vctx)
		done <- outcome{issues: issues, err: err}
	}()

	select {
	case out := <-done:
		return out.issues, out.err
	case <-ctx.Done():
		if d.timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, timeoutError{after: d.timeout}
		}
		return nil, ctx.Err()
	}
}

func (d *Dispatcher) failureIssue(rule domain.Rule, ref domain.PluginRef, root string, err error) domain.ValidationIssue {
	details := map[string]any{
		"module": ref.String(),
		"rule":   rule.Name,
		"error":  err.Error(),
	}

	var te timeoutError
	if errors.As(err, &te) {
		d.logger.Error("plugin timed out", "reference", ref.String(), "timeout", te.after)
		return domain.NewIssue(domain.SeverityError, fmt.Sprintf("Plugin timed out after %s", te.after), root, details)
	}

	d.logger.Error("plugin execution failed", "reference", ref.String(), "error", err)
	return domain.NewIssue(domain.SeverityError, fmt.Sprintf("Plugin crashed: %s", err), root, details)
}

// loadFailure is located at root like every other plugin failure; the rule
// name goes to details.
func loadFailure(rule domain.Rule, root string, err error) domain.ValidationIssue {
	return domain.NewIssue(domain.SeverityError, fmt.Sprintf("Failed to load plugin: %s", err), root, map[string]any{
		"module": rule.Module,
		"rule":   rule.Name,
		"error":  err.Error(),
	})
}

// Normalize converts one raw mapping into an issue: level becomes the
// severity (unknown or missing levels become error), message defaults to a
// generic text, path becomes the location, rule goes to details.rule and any
// other key is kept in details.
func (d *Dispatcher) Normalize(raw domain.RawIssue) domain.ValidationIssue {
	severity := domain.SeverityError
	if lv, ok := raw["level"]; ok {
		parsed, err := domain.ParseSeverity(fmt.Sprint(lv))
		if err != nil {
			d.logger.Warn("invalid severity from plugin, using error", "level", lv)
		} else {
			severity = parsed
		}
	}

	message := defaultMessage
	if m, ok := raw["message"]; ok && m != nil && fmt.Sprint(m) != "" {
		message = fmt.Sprint(m)
	}

	var location string
	if p, ok := raw["path"]; ok && p != nil {
		location = fmt.Sprint(p)
	}

	details := make(map[string]any)
	for k, v := range raw {
		switch k {
		case "level", "message", "path":
			continue
		}
		details[k] = v
	}
	return domain.NewIssue(severity, message, location, details)
}
