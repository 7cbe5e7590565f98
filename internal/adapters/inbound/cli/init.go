package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/outbound/config"
)

const rulesFileName = "shotlint_rules.yaml"

const starterConfig = `# vfxvox configuration

log_level: warn

sequences:
  check_resolution: true
  check_bit_depth: true
  workers: 4
  detail: false

shotlint:
  fail_on: error

plugins:
  dir: ~/.vfxvox/plugins
  timeout: 30s

history:
  enabled: false
`

const starterRules = `# ShotLint rules
rules:
  - name: shot_layout
    type: path_pattern
    pattern: "{sequence}/{shot}/{task}"
    vars:
      sequence: "seq_[0-9]{3}"
      shot: "shot_[0-9]{3}"
    severity: error

  - name: exr_naming
    type: filename_regex
    regex: '^[a-z0-9_]+\.\d{4}\.exr$'
    severity: warning

  - name: documentation
    type: must_exist
    glob: "docs/**/*.md"
    severity: info

  - name: plate
    type: frame_sequence
    folder: seq_010/shot_010/plate
    base: plate
    ext: exr
    start: 1001
    end: 1100
    padding: 4

  - name: no_empty_dirs
    type: plugin
    module: vfxvox.builtin:empty_dirs
    severity: warning
`

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Generate a .vfxvox.yaml and a starter rule file",
		Long:  "Create .vfxvox.yaml and shotlint_rules.yaml with commented defaults in path (default: current directory).",
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

			files := []struct{ name, content string }{
				{config.FileName, starterConfig},
				{rulesFileName, starterRules},
			}

			if !force {
				for _, f := range files {
					if _, err := os.Stat(filepath.Join(absPath, f.name)); err == nil {
						return fmt.Errorf("%s already exists (use --force to overwrite)", f.name)
					}
				}
			}

			for _, f := range files {
				if err := os.WriteFile(filepath.Join(absPath, f.name), []byte(f.content), 0644); err != nil {
					return fmt.Errorf("writing %s: %w", f.name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", f.name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")

	return cmd
}
