package plugins

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fatih/camelcase"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

// NamingModule is the module served by the vfxvox-naming plugin binary.
const NamingModule = "vfxvox-naming"

// RegisterNaming adds the file naming validators to r.
func RegisterNaming(r *Registry) {
	r.RegisterFunc(domain.PluginRef{Module: NamingModule, Callable: "lowercase"}, Lowercase)
	r.RegisterFunc(domain.PluginRef{Module: NamingModule, Callable: "no_spaces"}, NoSpaces)
	r.RegisterFunc(domain.PluginRef{Module: NamingModule, Callable: "snake_case"}, SnakeCase)
}

// Lowercase reports entries whose name contains an upper-case letter.
func Lowercase(ctx context.Context, vctx domain.ValidatorContext) ([]domain.RawIssue, error) {
	return walkNames(ctx, vctx, func(name, rel string) string {
		if strings.IndexFunc(name, unicode.IsUpper) < 0 {
			return ""
		}
		return fmt.Sprintf("Name is not lower case: %s", rel)
	})
}

// NoSpaces reports entries whose name contains whitespace.
func NoSpaces(ctx context.Context, vctx domain.ValidatorContext) ([]domain.RawIssue, error) {
	return walkNames(ctx, vctx, func(name, rel string) string {
		if strings.IndexFunc(name, unicode.IsSpace) < 0 {
			return ""
		}
		return fmt.Sprintf("Name contains whitespace: %s", rel)
	})
}

// SnakeCase reports entries whose stem has camel humps, such as
// ShotComp_v001.exr, and suggests the snake_case form.
func SnakeCase(ctx context.Context, vctx domain.ValidatorContext) ([]domain.RawIssue, error) {
	return walkNames(ctx, vctx, func(name, rel string) string {
		ext := filepath.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		want := snakeCase(stem)
		if want == stem {
			return ""
		}
		return fmt.Sprintf("Name is not snake_case: %s (expected %s%s)", rel, want, ext)
	})
}

// snakeCase splits every "_" or "." separated word at its camel humps.
// Letter to digit boundaries are kept together, so v001 stays v001.
func snakeCase(stem string) string {
	var b strings.Builder
	for i, r := range stem {
		if r == '_' || r == '.' {
			b.WriteRune(r)
			continue
		}
		if i > 0 && stem[i-1] != '_' && stem[i-1] != '.' {
			continue
		}
		end := strings.IndexAny(stem[i:], "_.")
		if end < 0 {
			end = len(stem) - i
		}
		for j, part := range camelcase.Split(stem[i : i+end]) {
			if first, _ := utf8.DecodeRuneInString(part); j > 0 && unicode.IsUpper(first) {
				b.WriteByte('_')
			}
			b.WriteString(strings.ToLower(part))
		}
	}
	return b.String()
}

// walkNames applies check to every entry below root. check returns the issue
// message, or "" when the name is fine.
func walkNames(ctx context.Context, vctx domain.ValidatorContext, check func(name, rel string) string) ([]domain.RawIssue, error) {
	level := optString(vctx.Options, "level", string(domain.SeverityWarning))
	var issues []domain.RawIssue

	err := filepath.WalkDir(vctx.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == vctx.Root {
			return nil
		}
		rel, _ := filepath.Rel(vctx.Root, path)
		msg := check(d.Name(), filepath.ToSlash(rel))
		if msg == "" {
			return nil
		}
		issues = append(issues, domain.RawIssue{
			"level":   level,
			"message": msg,
			"path":    path,
			"rule":    vctx.Rule,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issues, nil
}
