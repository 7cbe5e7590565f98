// Package plugins resolves plugin references to validators, either
// registered in-process or served by a plugin binary over go-plugin.
package plugins

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

// ErrNotFound is returned when no validator is known for a reference.
var ErrNotFound = errors.New("validator not found")

// Registry is an in-process ValidatorResolver keyed by "module:callable".
type Registry struct {
	mu         sync.RWMutex
	validators map[string]domain.ExternalValidator
}

func NewRegistry() *Registry {
	return &Registry{validators: make(map[string]domain.ExternalValidator)}
}

// Register binds ref to v, replacing any previous binding.
func (r *Registry) Register(ref domain.PluginRef, v domain.ExternalValidator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[ref.String()] = v
}

// RegisterFunc is Register for a plain function.
func (r *Registry) RegisterFunc(ref domain.PluginRef, fn domain.ValidatorFunc) {
	r.Register(ref, fn)
}

func (r *Registry) Resolve(ref domain.PluginRef) (domain.ExternalValidator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.validators[ref.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return v, nil
}

// References lists registered references in sorted order.
func (r *Registry) References() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	refs := make([]string, 0, len(r.validators))
	for k := range r.validators {
		refs = append(refs, k)
	}
	slices.Sort(refs)
	return refs
}

// Chain tries each resolver in order and returns the first validator found.
type Chain []domain.ValidatorResolver

func (c Chain) Resolve(ref domain.PluginRef) (domain.ExternalValidator, error) {
	var errs []error
	for _, r := range c {
		if r == nil {
			continue
		}
		v, err := r.Resolve(ref)
		if err == nil {
			return v, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return nil, errors.Join(errs...)
}
