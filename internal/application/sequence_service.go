package application

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain/lint"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain/sequence"
)

// SequenceRuleName names the single rule a sequence validation runs.
const SequenceRuleName = "sequence"

// SequenceRequest describes one image sequence validation.
type SequenceRequest struct {
	Pattern         string
	CheckResolution bool
	CheckBitDepth   bool
	Workers         int
	Detail          bool
	Record          bool
	HistoryDir      string // defaults to the pattern's directory
}

// NewSequenceRequest builds a request from the sequences section of the tool
// config.
func NewSequenceRequest(pattern string, cfg domain.SequenceConfig) SequenceRequest {
	return SequenceRequest{
		Pattern:         pattern,
		CheckResolution: cfg.ResolutionEnabled(),
		CheckBitDepth:   cfg.BitDepthEnabled(),
		Workers:         cfg.Workers,
		Detail:          cfg.Detail,
	}
}

// SequenceService validates one image sequence by running a single
// frame_sequence rule through the rule engine.
type SequenceService struct {
	reader  domain.FormatReader
	git     domain.GitInfo
	history domain.RunHistory
	logger  hclog.Logger
}

func NewSequenceService(
	reader domain.FormatReader,
	git domain.GitInfo,
	history domain.RunHistory,
	logger hclog.Logger,
) *SequenceService {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &SequenceService{reader: reader, git: git, history: history, logger: logger}
}

// Validate analyzes req.Pattern. An unrecognized pattern is returned as a
// configuration error; missing, corrupted and inconsistent frames are issues.
func (s *SequenceService) Validate(ctx context.Context, req SequenceRequest) (*domain.ValidationResult, error) {
	// 1. Build an engine around an analyzer configured for this request
	analyzer := sequence.NewAnalyzer(sequence.Options{
		Reader:          s.reader,
		CheckResolution: req.CheckResolution,
		CheckBitDepth:   req.CheckBitDepth,
		Workers:         req.Workers,
		Detail:          req.Detail,
		Logger:          s.logger,
	})
	engine := lint.New(
		lint.WithName("sequence"),
		lint.WithAnalyzer(analyzer),
		lint.WithLogger(s.logger),
	)

	// 2. Evaluate the single rule
	rule := domain.Rule{Name: SequenceRuleName, Type: domain.RuleTypeFrameSequence, Pattern: req.Pattern}
	result, err := engine.Validate(ctx, "", []domain.Rule{rule})
	if err != nil {
		return nil, fmt.Errorf("invalid sequence pattern: %w", err)
	}
	result.SetMetadata("root", filepath.Dir(req.Pattern))

	// 3. Version control metadata and history
	dir := req.HistoryDir
	if dir == "" {
		dir = filepath.Dir(req.Pattern)
	}
	commit := attachGitInfo(s.git, dir, result, s.logger)
	if req.Record {
		recordRun(s.history, dir, "validate-sequence", req.Pattern, commit, result, s.logger)
	}
	return result, nil
}
