package sequence

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

// missingSampleSize caps how many frame numbers are spelled out in the
// missing-frames message. The details always carry the full list.
const missingSampleSize = 10

// Options configures an Analyzer.
type Options struct {
	Reader          domain.FormatReader // nil disables header checks
	CheckResolution bool
	CheckBitDepth   bool
	Workers         int
	Detail          bool // keep every FrameInfo in metadata["frames"]
	Logger          hclog.Logger
}

// DefaultOptions enables both consistency checks with a sequential scan.
func DefaultOptions(reader domain.FormatReader) Options {
	return Options{
		Reader:          reader,
		CheckResolution: true,
		CheckBitDepth:   true,
		Workers:         1,
	}
}

// Analyzer computes the missing, corrupted and inconsistent frames of a
// sequence. It holds no state between calls.
type Analyzer struct {
	opts    Options
	scanner *Scanner
	logger  hclog.Logger
}

func NewAnalyzer(opts Options) *Analyzer {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Analyzer{
		opts:    opts,
		scanner: NewScanner(opts.Reader, opts.Workers, logger),
		logger:  logger,
	}
}

// mismatch tracks the first differing frame of one attribute.
type mismatch struct {
	frame    int
	expected string
	found    string
	count    int
}

func (m *mismatch) record(frame int, expected, found string) {
	if m.count == 0 {
		m.frame, m.expected, m.found = frame, expected, found
	}
	m.count++
}

// Report is the analysis outcome of one sequence.
type Report struct {
	Pattern   Pattern
	Start     int
	End       int
	Found     int
	Missing   []int
	Corrupted []domain.FrameInfo
	Frames    []domain.FrameInfo // only with Options.Detail
	Result    *domain.ValidationResult
}

// AnalyzePattern parses raw and analyzes it relative to the working directory.
func (a *Analyzer) AnalyzePattern(ctx context.Context, raw string) (*Report, error) {
	p, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return a.Analyze(ctx, p)
}

// Analyze scans p. When p has no explicit range, the range is the min/max
// frame found in one directory listing; no matching file at all is reported
// as a zero-frames error. The returned error is non-nil only when listing
// failed or ctx ended, in which case the report holds what was collected.
func (a *Analyzer) Analyze(ctx context.Context, p Pattern) (*Report, error) {
	result := domain.NewResult()
	result.SetMetadata("pattern", p.String())
	report := &Report{Pattern: p, Result: result}

	// 1. Determine the expected range
	if !p.HasRange {
		start, end, count, err := a.scanner.DiscoverRange(p)
		if err != nil {
			return report, err
		}
		if count == 0 {
			result.SetMetadata("frame_count", 0)
			result.Add(domain.NewIssue(domain.SeverityError, "No frames found matching pattern", p.Raw, nil))
			return report, nil
		}
		p = p.WithRange(start, end)
		report.Pattern = p
	}
	report.Start, report.End = p.Start, p.End

	a.logger.Debug("analyzing sequence", "pattern", p.String(), "start", p.Start, "end", p.End)

	// 2. Stream frames once, keeping only aggregates
	var (
		resolution, bitDepth mismatch
		baseRes              *domain.Resolution
		baseDepth            int
		unsupported          int
	)
	for f := range a.scanner.Frames(ctx, p, p.Start, p.End) {
		if a.opts.Detail {
			report.Frames = append(report.Frames, f)
		}
		if !f.Exists {
			report.Missing = append(report.Missing, f.Number)
			continue
		}
		report.Found++

		switch {
		case f.Corrupted:
			report.Corrupted = append(report.Corrupted, f)
			continue
		case f.Unsupported:
			unsupported++
			continue
		case f.Resolution == nil:
			continue
		}

		if baseRes == nil {
			baseRes, baseDepth = f.Resolution, f.BitDepth
			continue
		}
		if a.opts.CheckResolution && *f.Resolution != *baseRes {
			resolution.record(f.Number, baseRes.String(), f.Resolution.String())
		}
		if a.opts.CheckBitDepth && f.BitDepth != baseDepth {
			bitDepth.record(f.Number, fmt.Sprintf("%d-bit", baseDepth), fmt.Sprintf("%d-bit", f.BitDepth))
		}
	}

	scanned := uint64(len(report.Missing) + report.Found)
	expected := p.ExpectedCount()
	if err := ctx.Err(); err != nil && scanned < expected {
		a.populate(report, resolution, bitDepth, unsupported)
		return report, fmt.Errorf("sequence scan interrupted after %d of %d frames: %w", scanned, expected, err)
	}

	// 3. Emit issues in a fixed order
	a.populate(report, resolution, bitDepth, unsupported)
	return report, nil
}

func (a *Analyzer) populate(report *Report, resolution, bitDepth mismatch, unsupported int) {
	p, result := report.Pattern, report.Result

	result.SetMetadata("frame_count", report.Found)
	result.SetMetadata("frame_range", fmt.Sprintf("%d-%d", report.Start, report.End))
	if a.opts.Detail {
		result.SetMetadata("frames", report.Frames)
	}

	if len(report.Missing) > 0 {
		result.Add(domain.NewIssue(domain.SeverityError, missingMessage(report.Missing), p.Folder, map[string]any{
			"missing_count":  len(report.Missing),
			"expected_range": fmt.Sprintf("%d-%d", report.Start, report.End),
			"missing_frames": report.Missing,
			"found_count":    report.Found,
		}))
	}

	for _, f := range report.Corrupted {
		result.Add(domain.NewIssue(domain.SeverityError,
			fmt.Sprintf("Corrupted or unreadable frame %d: %s", f.Number, f.Error),
			f.Path,
			map[string]any{"frame": f.Number, "error": f.Error},
		))
	}

	if resolution.count > 0 {
		result.Add(domain.NewIssue(domain.SeverityError,
			fmt.Sprintf("Resolution mismatch at frame %d: expected %s, found %s", resolution.frame, resolution.expected, resolution.found),
			p.Path(resolution.frame),
			map[string]any{
				"frame":          resolution.frame,
				"expected":       resolution.expected,
				"found":          resolution.found,
				"mismatch_count": resolution.count,
			},
		))
	}

	if bitDepth.count > 0 {
		result.Add(domain.NewIssue(domain.SeverityError,
			fmt.Sprintf("Bit depth mismatch at frame %d: expected %s, found %s", bitDepth.frame, bitDepth.expected, bitDepth.found),
			p.Path(bitDepth.frame),
			map[string]any{
				"frame":          bitDepth.frame,
				"expected":       bitDepth.expected,
				"found":          bitDepth.found,
				"mismatch_count": bitDepth.count,
			},
		))
	}

	if !a.opts.CheckResolution && !a.opts.CheckBitDepth {
		return
	}
	switch {
	case a.opts.Reader == nil && report.Found > len(report.Corrupted):
		result.Add(domain.NewIssue(domain.SeverityInfo,
			"Format reader unavailable: resolution and bit depth not checked",
			p.Folder, nil))
	case unsupported > 0:
		result.Add(domain.NewIssue(domain.SeverityInfo,
			fmt.Sprintf("Format reader unavailable for %s files: resolution and bit depth not checked", extLabel(p)),
			p.Folder,
			map[string]any{"ext": p.Ext(), "frame_count": unsupported},
		))
	}
}

func missingMessage(missing []int) string {
	if len(missing) > missingSampleSize {
		return fmt.Sprintf("%d frames missing. Sample: %v", len(missing), missing[:missingSampleSize])
	}
	return fmt.Sprintf("Missing frames: %v", missing)
}

func extLabel(p Pattern) string {
	if ext := p.Ext(); ext != "" {
		return ext
	}
	return "extensionless"
}
