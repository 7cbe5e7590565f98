package plugins

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

// BuiltinModule is the module name of the validators shipped with vfxvox.
const BuiltinModule = "vfxvox.builtin"

// DefaultMaxPathLength is the path_length limit when no max_length option is
// given. It matches the classic Windows MAX_PATH minus some headroom.
const DefaultMaxPathLength = 240

// RegisterBuiltins adds vfxvox.builtin:empty_dirs and
// vfxvox.builtin:path_length to r.
func RegisterBuiltins(r *Registry) {
	r.RegisterFunc(domain.PluginRef{Module: BuiltinModule, Callable: "empty_dirs"}, EmptyDirs)
	r.RegisterFunc(domain.PluginRef{Module: BuiltinModule, Callable: "path_length"}, PathLength)
}

// EmptyDirs reports every directory under root that has no entries.
// Option "level" overrides the reported level (default warning).
func EmptyDirs(ctx context.Context, vctx domain.ValidatorContext) ([]domain.RawIssue, error) {
	level := optString(vctx.Options, "level", string(domain.SeverityWarning))
	var issues []domain.RawIssue

	err := filepath.WalkDir(vctx.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() || path == vctx.Root {
			return nil
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			rel, _ := filepath.Rel(vctx.Root, path)
			issues = append(issues, domain.RawIssue{
				"level":   level,
				"message": fmt.Sprintf("Empty directory: %s", filepath.ToSlash(rel)),
				"path":    path,
				"rule":    vctx.Rule,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issues, nil
}

// PathLength reports paths, relative to root, longer than option
// "max_length" (default DefaultMaxPathLength).
func PathLength(ctx context.Context, vctx domain.ValidatorContext) ([]domain.RawIssue, error) {
	limit := optInt(vctx.Options, "max_length", DefaultMaxPathLength)
	if limit <= 0 {
		return nil, fmt.Errorf("max_length must be > 0 (got %d)", limit)
	}
	var issues []domain.RawIssue

	err := filepath.WalkDir(vctx.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(vctx.Root, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if n := len(rel); n > limit {
			issues = append(issues, domain.RawIssue{
				"level":      string(domain.SeverityWarning),
				"message":    fmt.Sprintf("Path length %d exceeds %d: %s", n, limit, rel),
				"path":       path,
				"rule":       vctx.Rule,
				"length":     n,
				"max_length": limit,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issues, nil
}

func optString(opts map[string]any, key, def string) string {
	if v, ok := opts[key].(string); ok && v != "" {
		return v
	}
	return def
}

// optInt accepts the numeric types YAML and JSON decoding produce.
func optInt(opts map[string]any, key string, def int) int {
	switch v := opts[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}
