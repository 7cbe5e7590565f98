package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

// ── warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// maxListItems caps how many elements of a list-valued detail are printed.
const maxListItems = 10

// RenderResult formats a validation result for the terminal. title names the
// tool ("shotlint", "sequence").
func RenderResult(title string, result *domain.ValidationResult) string {
	var b strings.Builder

	// ── Header ──
	subtitle := subject(result)
	status := passStyle.Bold(true).Render("PASSED")
	if !result.Passed() {
		status = failStyle.Bold(true).Render("FAILED")
	}
	b.WriteString(boxStyle.Render(headerStyle.Render(title) + "\n" + dimStyle.Render(subtitle) + "\n\n" + status))
	b.WriteString("\n\n")

	if line := summaryLine(result); line != "" {
		b.WriteString("  " + dimStyle.Render(line) + "\n\n")
	}

	b.WriteString("  " + separatorLine)
	b.WriteString("\n\n")

	// ── Issues ──
	if len(result.Issues) == 0 {
		b.WriteString("  " + passStyle.Render("No issues found.") + "\n\n")
		return b.String()
	}

	b.WriteString("  ")
	b.WriteString(titleStyle.Render("Issues"))
	b.WriteString("  ")
	if n := result.ErrorCount(); n > 0 {
		b.WriteString(errorTagStyle.Render(fmt.Sprintf("%d errors", n)))
		b.WriteString("  ")
	}
	if n := result.WarningCount(); n > 0 {
		b.WriteString(warnTagStyle.Render(fmt.Sprintf("%d warnings", n)))
		b.WriteString("  ")
	}
	if n := result.InfoCount(); n > 0 {
		b.WriteString(infoTagStyle.Render(fmt.Sprintf("%d info", n)))
	}
	b.WriteString("\n\n")

	for _, issue := range result.Issues {
		renderIssue(&b, issue)
	}
	b.WriteString("\n")
	return b.String()
}

// subject is the pattern or directory the result is about.
func subject(result *domain.ValidationResult) string {
	for _, key := range []string{"pattern", "root"} {
		if v, ok := result.Metadata[key]; ok && fmt.Sprint(v) != "" {
			return fmt.Sprint(v)
		}
	}
	return "<unknown>"
}

func summaryLine(result *domain.ValidationResult) string {
	var parts []string
	if n, ok := result.Metadata["frame_count"]; ok {
		part := fmt.Sprintf("Frames: %v", n)
		if r, ok := result.Metadata["frame_range"]; ok {
			part += fmt.Sprintf(" (%v)", r)
		}
		parts = append(parts, part)
	}
	if n, ok := result.Metadata["rule_count"]; ok {
		parts = append(parts, fmt.Sprintf("Rules: %v", n))
	}
	if c, ok := result.Metadata["git_commit"].(string); ok && len(c) >= 7 {
		commit := c[:7]
		if dirty, _ := result.Metadata["git_dirty"].(bool); dirty {
			commit += "+dirty"
		}
		parts = append(parts, "Commit: "+commit)
	}
	return strings.Join(parts, "  ")
}

func renderIssue(b *strings.Builder, issue domain.ValidationIssue) {
	tag := severityTag(issue.Severity)
	fmt.Fprintf(b, "    %s %s\n", tag, issue.Message)
	if issue.Location != "" {
		fmt.Fprintf(b, "          %s %s\n", faintStyle.Render("↳"), fileStyle.Render(issue.Location))
	}
	for _, key := range sortedKeys(issue.Details) {
		fmt.Fprintf(b, "            %s\n", dimStyle.Render(key+": "+FormatValue(issue.Details[key])))
	}
}

func severityTag(severity domain.Severity) string {
	switch severity {
	case domain.SeverityError:
		return errorTagStyle.Render("error")
	case domain.SeverityWarning:
		return warnTagStyle.Render("warn ")
	default:
		return infoTagStyle.Render("info ")
	}
}

// FormatValue prints a detail value, truncating long lists.
func FormatValue(v any) string {
	switch list := v.(type) {
	case []int:
		if len(list) > maxListItems {
			return fmt.Sprintf("%v... (%d total)", list[:maxListItems], len(list))
		}
	case []any:
		if len(list) > maxListItems {
			return fmt.Sprintf("%v... (%d total)", list[:maxListItems], len(list))
		}
	case []string:
		if len(list) > maxListItems {
			return fmt.Sprintf("%v... (%d total)", list[:maxListItems], len(list))
		}
	}
	return fmt.Sprint(v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// RenderHistory formats run history for terminal output.
func RenderHistory(entries []domain.RunEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No run history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Run History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, e := range entries {
		hash := e.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}
		date := e.Timestamp
		if len(date) > 10 {
			date = date[:10]
		}

		status := passStyle.Render("pass")
		if !e.Passed {
			status = failStyle.Render("fail")
		}

		line := fmt.Sprintf("  %s  %s  %s  %-17s %s  %s",
			dimStyle.Render(date),
			faintStyle.Render(hash),
			status,
			e.Tool,
			fmt.Sprintf("%d errors, %d warnings", e.Errors, e.Warnings),
			fileStyle.Render(e.Target),
		)

		if i > 0 && e.Tool == entries[i-1].Tool {
			diff := e.Errors - entries[i-1].Errors
			if diff < 0 {
				line += "  " + passStyle.Render(fmt.Sprintf("↓%d", -diff))
			} else if diff > 0 {
				line += "  " + failStyle.Render(fmt.Sprintf("↑%d", diff))
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}
