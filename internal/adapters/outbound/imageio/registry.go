// Package imageio reads image headers (resolution, bit depth) without
// decoding pixel data.
package imageio

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

// Handler reads headers of one family of image formats.
type Handler interface {
	Name() string
	CanHandle(path string) bool
	ReadHeader(path string) (domain.FrameHeader, error)
}

// Registry implements domain.FormatReader by dispatching on the file
// extension to the first handler that accepts it.
type Registry struct {
	mu       sync.RWMutex
	handlers []Handler
	logger   hclog.Logger
}

// NewRegistry returns a registry holding the EXR, DPX and standard image
// handlers.
func NewRegistry(logger hclog.Logger) *Registry {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Registry{
		handlers: []Handler{NewEXRHandler(), NewDPXHandler(), NewStandardHandler()},
		logger:   logger.Named("imageio"),
	}
}

// Register adds h ahead of every existing handler.
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append([]Handler{h}, r.handlers...)
	r.logger.Debug("registered format handler", "handler", h.Name())
}

// Handlers returns handler names in lookup order.
func (r *Registry) Handlers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.handlers))
	for i, h := range r.handlers {
		names[i] = h.Name()
	}
	return names
}

// Supports reports whether some handler accepts path.
func (r *Registry) Supports(path string) bool {
	return r.handlerFor(path) != nil
}

func (r *Registry) ReadHeader(path string) (domain.FrameHeader, error) {
	h := r.handlerFor(path)
	if h == nil {
		return domain.FrameHeader{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Ext(path))
	}
	header, err := h.ReadHeader(path)
	if err != nil {
		r.logger.Debug("header read failed", "path", path, "handler", h.Name(), "error", err)
		return domain.FrameHeader{}, err
	}
	return header, nil
}

func (r *Registry) handlerFor(path string) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.handlers {
		if h.CanHandle(path) {
			return h
		}
	}
	return nil
}

func hasExt(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrCorruptedFrame, fmt.Sprintf(format, args...))
}
