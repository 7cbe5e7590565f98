package application

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain/lint"
)

// ShotLintRequest describes one directory validation.
type ShotLintRequest struct {
	Root      string
	RulesPath string
	Record    bool // append a run entry to the root's history
}

// ShotLintService orchestrates a directory validation:
// check root → load rules → compile and evaluate → attach git info → record.
type ShotLintService struct {
	rules   domain.RuleLoader
	engine  *lint.Engine
	git     domain.GitInfo
	history domain.RunHistory
	logger  hclog.Logger
}

func NewShotLintService(
	rules domain.RuleLoader,
	engine *lint.Engine,
	git domain.GitInfo,
	history domain.RunHistory,
	logger hclog.Logger,
) *ShotLintService {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ShotLintService{rules: rules, engine: engine, git: git, history: history, logger: logger}
}

// Lint validates req.Root against the rules in req.RulesPath. A missing root
// or a rule file problem is returned as an error; everything found in the
// tree is reported as issues.
func (s *ShotLintService) Lint(ctx context.Context, req ShotLintRequest) (*domain.ValidationResult, error) {
	// 1. Root must exist and be a directory
	info, err := os.Stat(req.Root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrRootNotFound, req.Root)
		}
		return nil, fmt.Errorf("checking root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrRootNotFound, req.Root)
	}

	// 2. Load rules
	rules, err := s.rules.Load(req.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	s.logger.Debug("rules loaded", "path", req.RulesPath, "count", len(rules))

	// 3. Compile and evaluate
	result, err := s.engine.Validate(ctx, req.Root, rules)
	if err != nil {
		return nil, err
	}
	result.SetMetadata("rules_file", req.RulesPath)

	// 4. Version control metadata
	commit := attachGitInfo(s.git, req.Root, result, s.logger)

	// 5. History
	if req.Record {
		recordRun(s.history, req.Root, "shotlint", req.Root, commit, result, s.logger)
	}
	return result, nil
}

// attachGitInfo adds git_commit and git_dirty when path is inside a
// repository and returns the commit hash.
func attachGitInfo(git domain.GitInfo, path string, result *domain.ValidationResult, logger hclog.Logger) string {
	if git == nil || !git.IsGitRepo(path) {
		return ""
	}
	commit, err := git.CommitHash(path)
	if err != nil {
		logger.Debug("no commit hash", "path", path, "error", err)
		return ""
	}
	result.SetMetadata("git_commit", commit)
	if dirty, err := git.IsDirty(path); err == nil {
		result.SetMetadata("git_dirty", dirty)
	}
	return commit
}

// recordRun stores a history entry. Failures are logged, never fatal.
func recordRun(history domain.RunHistory, dir, tool, target, commit string, result *domain.ValidationResult, logger hclog.Logger) {
	if history == nil {
		return
	}
	entry := domain.NewRunEntry(time.Now().UTC().Format(time.RFC3339), tool, target, result)
	entry.CommitHash = commit
	if err := history.Save(dir, entry); err != nil {
		logger.Warn("could not record run history", "dir", dir, "error", err)
	}
}
