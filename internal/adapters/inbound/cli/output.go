package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/outbound/report"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

// writeReport renders result to stdout, or to reportPath when set.
func writeReport(cmd *cobra.Command, format report.Format, tool, reportPath string, result *domain.ValidationResult) error {
	if reportPath == "" {
		return report.Render(cmd.OutOrStdout(), format, tool, result)
	}

	f, err := os.Create(reportPath)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	if err := report.Render(f, format, tool, result); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", reportPath)
	return nil
}
