package cli

import (
	"github.com/spf13/cobra"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/outbound/report"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/application"
)

func newValidateSequenceCmd(opts *globalOptions) *cobra.Command {
	var (
		formatFlag   string
		reportPath   string
		checkRes     bool
		noCheckRes   bool
		checkDepth   bool
		noCheckDepth bool
		workers      int
		detail       bool
		record       bool
	)

	cmd := &cobra.Command{
		Use:   "validate-sequence <pattern>",
		Short: "Validate an image sequence",
		Long: "Check an image sequence for missing, corrupted and inconsistent frames.\n" +
			"Patterns: shot.%04d.exr, shot.####.exr, shot.[1001-1100].exr\n" +
			"Exit codes: 0 passed, 1 errors, 2 warnings only, 3 could not run.",
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

			req := application.NewSequenceRequest(args[0], env.cfg.Sequences)
			req.CheckResolution = toggle(cmd, "check-resolution", "no-check-resolution", checkRes, noCheckRes, req.CheckResolution)
			req.CheckBitDepth = toggle(cmd, "check-bit-depth", "no-check-bit-depth", checkDepth, noCheckDepth, req.CheckBitDepth)
			if cmd.Flags().Changed("workers") {
				req.Workers = workers
			}
			if cmd.Flags().Changed("detail") {
				req.Detail = detail
			}
			req.Record = env.cfg.History.Enabled
			if cmd.Flags().Changed("record") {
				req.Record = record
			}

			result, err := env.sequenceService().Validate(cmd.Context(), req)
			if err != nil {
				return err
			}

			if err := writeReport(cmd, format, "sequence", reportPath, result); err != nil {
				return err
			}
			switch {
			case result.HasErrors():
				return &ExitError{Code: ExitErrors}
			case result.HasWarnings():
				return &ExitError{Code: ExitWarnings}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "console", "Output format: console, json, yaml, md, sarif")
	cmd.Flags().StringVarP(&reportPath, "report", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&checkRes, "check-resolution", true, "Check resolution consistency")
	cmd.Flags().BoolVar(&noCheckRes, "no-check-resolution", false, "Skip the resolution check")
	cmd.Flags().BoolVar(&checkDepth, "check-bit-depth", true, "Check bit depth consistency")
	cmd.Flags().BoolVar(&noCheckDepth, "no-check-bit-depth", false, "Skip the bit depth check")
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "Frames read in parallel")
	cmd.Flags().BoolVar(&detail, "detail", false, "Include per-frame information in the report")
	cmd.Flags().BoolVar(&record, "record", false, "Append the run to the sequence directory's history")
	cmd.MarkFlagsMutuallyExclusive("check-resolution", "no-check-resolution")
	cmd.MarkFlagsMutuallyExclusive("check-bit-depth", "no-check-bit-depth")

	return cmd
}

// toggle resolves an --x/--no-x flag pair against the configured value.
func toggle(cmd *cobra.Command, on, off string, onVal, offVal, current bool) bool {
	switch {
	case cmd.Flags().Changed(off):
		return !offVal
	case cmd.Flags().Changed(on):
		return onVal
	}
	return current
}
