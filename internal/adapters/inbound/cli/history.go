package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/outbound/history"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/outbound/tui"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

func newHistoryCmd() *cobra.Command {
	var (
		jsonOutput bool
		tool       string
	)

	cmd := &cobra.Command{
		Use:   "history [path]",
		Short: "Show recorded validation runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			entries, err := history.New().LoadTool(absPath, tool)
			if err != nil {
				return fmt.Errorf("loading history: %w", err)
			}

			if jsonOutput {
				if entries == nil {
					entries = []domain.RunEntry{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&tool, "tool", "", "Only show runs of one tool (shotlint, validate-sequence)")

	return cmd
}
