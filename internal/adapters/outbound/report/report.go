// Package report writes validation results in the formats the CLI offers.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/outbound/tui"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

// Format selects a renderer.
type Format string

const (
	FormatConsole  Format = "console"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "md"
	FormatSARIF    Format = "sarif"
)

// Formats lists every accepted format in help-text order.
var Formats = []Format{FormatConsole, FormatJSON, FormatYAML, FormatMarkdown, FormatSARIF}

// ParseFormat accepts the names in Formats plus "markdown".
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "markdown" {
		return FormatMarkdown, nil
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (valid: console, json, yaml, md, sarif)", s)
}

// Renderer writes one result. tool names the validator ("shotlint",
// "sequence") for headings.
type Renderer interface {
	Render(w io.Writer, tool string, result *domain.ValidationResult) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(w io.Writer, tool string, result *domain.ValidationResult) error

func (f RendererFunc) Render(w io.Writer, tool string, result *domain.ValidationResult) error {
	return f(w, tool, result)
}

// For returns the renderer for format.
func For(format Format) (Renderer, error) {
	switch format {
	case FormatConsole:
		return RendererFunc(renderConsole), nil
	case FormatJSON:
		return RendererFunc(renderJSON), nil
	case FormatYAML:
		return RendererFunc(renderYAML), nil
	case FormatMarkdown:
		return RendererFunc(renderMarkdown), nil
	case FormatSARIF:
		return RendererFunc(renderSARIF), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// Render is For(format).Render.
func Render(w io.Writer, format Format, tool string, result *domain.ValidationResult) error {
	r, err := For(format)
	if err != nil {
		return err
	}
	return r.Render(w, tool, result)
}

func renderConsole(w io.Writer, tool string, result *domain.ValidationResult) error {
	_, err := io.WriteString(w, tui.RenderResult(tool, result))
	return err
}

func renderJSON(w io.Writer, _ string, result *domain.ValidationResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func renderYAML(w io.Writer, _ string, result *domain.ValidationResult) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(result); err != nil {
		return err
	}
	return enc.Close()
}
