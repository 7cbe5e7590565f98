package tui_test

import (
	"testing"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/outbound/tui"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
	"github.com/stretchr/testify/assert"
)

func sampleResult() *domain.ValidationResult {
	r := domain.NewResult()
	r.SetMetadata("pattern", "renders/shot.%04d.exr")
	r.SetMetadata("frame_count", 100)
	r.SetMetadata("frame_range", "1001-1100")
	r.SetMetadata("git_commit", "0123456789abcdef0123456789abcdef01234567")
	r.Add(
		domain.NewIssue(domain.SeverityError, "Missing frames: [1010 1011]", "renders", map[string]any{
			"missing_count": 2,
		}),
		domain.NewIssue(domain.SeverityWarning, "No path matched pattern '{seq}'", "", nil),
		domain.NewIssue(domain.SeverityInfo, "Format reader unavailable", "", nil),
	)
	return r
}

func TestRenderResult_Header(t *testing.T) {
	output := tui.RenderResult("sequence", sampleResult())
	assert.Contains(t, output, "sequence")
	assert.Contains(t, output, "renders/shot.%04d.exr")
	assert.Contains(t, output, "FAILED")
	assert.Contains(t, output, "Frames: 100 (1001-1100)")
	assert.Contains(t, output, "Commit: 0123456")
}

func TestRenderResult_IssuesAndCounts(t *testing.T) {
	output := tui.RenderResult("sequence", sampleResult())
	assert.Contains(t, output, "1 errors")
	assert.Contains(t, output, "1 warnings")
	assert.Contains(t, output, "1 info")
	assert.Contains(t, output, "Missing frames: [1010 1011]")
	assert.Contains(t, output, "missing_count: 2")
}

func TestRenderResult_Passed(t *testing.T) {
	r := domain.NewResult()
	r.SetMetadata("root", "/shows/abc")

	output := tui.RenderResult("shotlint", r)
	assert.Contains(t, output, "PASSED")
	assert.Contains(t, output, "/shows/abc")
	assert.Contains(t, output, "No issues found.")
}

func TestFormatValue_TruncatesLongLists(t *testing.T) {
	frames := make([]int, 25)
	for i := range frames {
		frames[i] = 1001 + i
	}
	assert.Equal(t, "[1001 1002 1003 1004 1005 1006 1007 1008 1009 1010]... (25 total)", tui.FormatValue(frames))
	assert.Equal(t, "[1 2]", tui.FormatValue([]int{1, 2}))
	assert.Equal(t, "1001-1100", tui.FormatValue("1001-1100"))
}

func TestRenderHistory_Empty(t *testing.T) {
	assert.Contains(t, tui.RenderHistory(nil), "No run history found.")
}

func TestRenderHistory_Entries(t *testing.T) {
	entries := []domain.RunEntry{
		{Timestamp: "2026-10-01T10:00:00Z", Tool: "shotlint", Target: "/shows/abc", CommitHash: "abcdef0123", Errors: 4},
		{Timestamp: "2026-10-02T10:00:00Z", Tool: "shotlint", Target: "/shows/abc", Errors: 1, Warnings: 2},
	}
	output := tui.RenderHistory(entries)
	assert.Contains(t, output, "Run History")
	assert.Contains(t, output, "2026-10-01")
	assert.Contains(t, output, "abcdef0")
	assert.Contains(t, output, "1 errors, 2 warnings")
	assert.Contains(t, output, "↓3")
}
