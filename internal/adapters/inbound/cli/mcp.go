package cli

import (
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/inbound/mcp"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/outbound/history"
)

func newMCPCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the vfxvox MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(opts))
	return cmd
}

func newMCPServeCmd(opts *globalOptions) *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start vfxvox MCP server (stdio)",
		Long:  "Start the vfxvox MCP server using stdio transport. Assistants can lint shot trees, validate sequences and read run history.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if projectPath == "" {
				projectPath = "."
			}
			root, err := filepath.Abs(projectPath)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			env, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			engine := env.engine()
			s := mcpadapter.NewVFXVoxMCPServer(root, mcpadapter.Services{
				ShotLint:  env.shotLintService(engine),
				Sequence:  env.sequenceService(),
				Engine:    engine,
				History:   history.New(),
				Sequences: env.cfg.Sequences,
			}, version)
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", "", "Project path (defaults to current working directory)")

	return cmd
}
