package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/outbound/report"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/application"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

func newShotLintCmd(opts *globalOptions) *cobra.Command {
	var (
		rulesPath  string
		formatFlag string
		reportPath string
		failOnFlag string
		record     bool
	)

	cmd := &cobra.Command{
		Use:   "shotlint <dir>",
		Short: "Validate a directory tree against a rule file",
		Long: "Evaluate every rule in the rule file against <dir> and report the issues found.\n" +
			"Exit codes: 0 passed, 1 failed per --fail-on, 3 could not run.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(formatFlag)
			if err != nil {
				return err
			}

			env, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			failOn := env.cfg.ShotLint.FailOn
			if cmd.Flags().Changed("fail-on") {
				if failOn, err = domain.ParseFailOn(failOnFlag); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("record") {
				record = env.cfg.History.Enabled
			}

			root, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			svc := env.shotLintService(env.engine())
			result, err := svc.Lint(cmd.Context(), application.ShotLintRequest{
				Root:      root,
				RulesPath: rulesPath,
				Record:    record,
			})
			if err != nil {
				return err
			}

			if err := writeReport(cmd, format, "shotlint", reportPath, result); err != nil {
				return err
			}
			if failOn.Fails(result) {
				return &ExitError{Code: ExitErrors}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&rulesPath, "rules", "r", "", "Rule file (YAML)")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "console", "Output format: console, json, yaml, md, sarif")
	cmd.Flags().StringVarP(&reportPath, "report", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVar(&failOnFlag, "fail-on", string(domain.FailOnError), "Exit non-zero on: error, warning, none")
	cmd.Flags().BoolVar(&record, "record", false, "Append the run to the directory's history")
	_ = cmd.MarkFlagRequired("rules")

	return cmd
}
