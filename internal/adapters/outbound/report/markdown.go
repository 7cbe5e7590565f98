package report

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/outbound/tui"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

var markdownTitles = map[string]string{
	"sequence": "Sequence Validation Report",
	"shotlint": "ShotLint Report",
}

func renderMarkdown(w io.Writer, tool string, result *domain.ValidationResult) error {
	var b strings.Builder

	title, ok := markdownTitles[tool]
	if !ok {
		title = "Validation Report"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if p, ok := result.Metadata["pattern"]; ok {
		fmt.Fprintf(&b, "**Pattern**: `%v`\n", p)
		fmt.Fprintf(&b, "**Frames**: %v (%v)\n", metaOr(result, "frame_count", 0), metaOr(result, "frame_range", "unknown"))
	} else if root, ok := result.Metadata["root"]; ok {
		fmt.Fprintf(&b, "**Root**: `%v`\n", root)
		if rules, ok := result.Metadata["rules_file"]; ok {
			fmt.Fprintf(&b, "**Rules**: `%v`\n", rules)
		}
	}
	fmt.Fprintf(&b, "**Errors**: %d\n", result.ErrorCount())
	fmt.Fprintf(&b, "**Warnings**: %d\n\n", result.WarningCount())

	if len(result.Issues) == 0 {
		b.WriteString("No issues found.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	writeSection(&b, "Errors", result.Errors())
	writeSection(&b, "Warnings", result.Warnings())

	var infos []domain.ValidationIssue
	for _, i := range result.Issues {
		if i.Severity == domain.SeverityInfo {
			infos = append(infos, i)
		}
	}
	if len(infos) > 0 {
		b.WriteString("## Info\n\n")
		for _, i := range infos {
			fmt.Fprintf(&b, "- %s\n", i.Message)
			if i.Location != "" {
				fmt.Fprintf(&b, "  - Location: `%s`\n", i.Location)
			}
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSection(b *strings.Builder, heading string, issues []domain.ValidationIssue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", heading)
	for _, i := range issues {
		fmt.Fprintf(b, "### %s\n\n", i.Message)
		if i.Location != "" {
			fmt.Fprintf(b, "**Location**: `%s`\n\n", i.Location)
		}
		if len(i.Details) > 0 {
			b.WriteString("**Details**:\n\n")
			keys := make([]string, 0, len(i.Details))
			for k := range i.Details {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			for _, k := range keys {
				fmt.Fprintf(b, "- **%s**: `%s`\n", k, tui.FormatValue(i.Details[k]))
			}
			b.WriteString("\n")
		}
	}
}

func metaOr(result *domain.ValidationResult, key string, def any) any {
	if v, ok := result.Metadata[key]; ok {
		return v
	}
	return def
}
