package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

const informationURI = "https://github.com/ayudhinc/vfxvox-pipeline-utils"

func renderSARIF(w io.Writer, tool string, result *domain.ValidationResult) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI("vfxvox "+tool, informationURI)
	root, _ := result.Metadata["root"].(string)
	seen := make(map[string]bool)

	for _, issue := range result.Issues {
		ruleID := ruleIDFor(tool, issue)
		if !seen[ruleID] {
			run.AddRule(ruleID).
				WithDescription(ruleID).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: sarifLevel(issue.Severity)})
			seen[ruleID] = true
		}

		res := sarif.NewRuleResult(ruleID).
			WithMessage(sarif.NewTextMessage(issue.Message)).
			WithLevel(sarifLevel(issue.Severity))
		if issue.Location != "" {
			location := sarif.NewLocation().WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(relativeURI(root, issue.Location))),
			)
			res.WithLocations([]*sarif.Location{location})
		}
		run.AddResult(res)
	}
	report.AddRun(run)

	return report.PrettyWrite(w)
}

// ruleIDFor prefers the rule name recorded in the issue's details.
func ruleIDFor(tool string, issue domain.ValidationIssue) string {
	if r, ok := issue.Details["rule"].(string); ok && r != "" {
		return r
	}
	return tool
}

func sarifLevel(s domain.Severity) string {
	switch s {
	case domain.SeverityError:
		return "error"
	case domain.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

func relativeURI(root, location string) string {
	if root != "" && filepath.IsAbs(location) {
		if rel, err := filepath.Rel(root, location); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(location)
}
