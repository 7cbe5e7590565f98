package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/outbound/report"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/application"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

// registerTools registers all vfxvox MCP tools on the given server.
func registerTools(s *server.MCPServer, root string, svc Services) {
	// 1. vfxvox_shotlint
	s.AddTool(
		mcplib.NewTool("vfxvox_shotlint",
			mcplib.WithDescription("Validate a directory tree against a ShotLint rule file and return the validation result"),
			mcplib.WithString("rules",
				mcplib.Required(),
				mcplib.Description("Path to the YAML rule file"),
			),
			mcplib.WithString("root", mcplib.Description("Directory to validate (defaults to the server root)")),
			mcplib.WithString("format", mcplib.Description("Output format: json, yaml, md or sarif (default: json)")),
		),
		handleShotLint(root, svc),
	)

	// 2. vfxvox_validate_sequence
	s.AddTool(
		mcplib.NewTool("vfxvox_validate_sequence",
			mcplib.WithDescription("Check an image sequence for missing, corrupted and inconsistent frames"),
			mcplib.WithString("pattern",
				mcplib.Required(),
				mcplib.Description("Sequence pattern such as renders/shot.%04d.exr, renders/shot.####.exr or renders/shot.[1001-1100].exr"),
			),
			mcplib.WithBoolean("check_resolution", mcplib.Description("Check resolution consistency (default: true)")),
			mcplib.WithBoolean("check_bit_depth", mcplib.Description("Check bit depth consistency (default: true)")),
			mcplib.WithNumber("workers", mcplib.Description("Frames read concurrently (default: 1)")),
			mcplib.WithBoolean("detail", mcplib.Description("Include per-frame information in metadata")),
			mcplib.WithString("format", mcplib.Description("Output format: json, yaml, md or sarif (default: json)")),
		),
		handleValidateSequence(root, svc),
	)

	// 3. vfxvox_list_rule_types
	s.AddTool(
		mcplib.NewTool("vfxvox_list_rule_types",
			mcplib.WithDescription("List the rule types a ShotLint rule file may use"),
		),
		handleListRuleTypes(svc),
	)
}

func handleShotLint(root string, svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		rules, err := request.RequireString("rules")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		args := request.GetArguments()
		dir, _ := args["root"].(string)
		format, _ := args["format"].(string)

		result, err := svc.ShotLint.Lint(ctx, application.ShotLintRequest{
			Root:      resolve(root, dir),
			RulesPath: resolve(root, rules),
		})
		if err != nil {
			return errorResult(fmt.Sprintf("shotlint failed: %v", err)), nil
		}
		return formatted(format, "shotlint", result)
	}
}

func handleValidateSequence(root string, svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		pattern, err := request.RequireString("pattern")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		req := application.NewSequenceRequest(resolve(root, pattern), svc.Sequences)
		args := request.GetArguments()
		if v, ok := args["check_resolution"].(bool); ok {
			req.CheckResolution = v
		}
		if v, ok := args["check_bit_depth"].(bool); ok {
			req.CheckBitDepth = v
		}
		if v, ok := args["workers"].(float64); ok && v >= 1 {
			req.Workers = int(v)
		}
		if v, ok := args["detail"].(bool); ok {
			req.Detail = v
		}
		format, _ := args["format"].(string)

		result, err := svc.Sequence.Validate(ctx, req)
		if err != nil {
			return errorResult(fmt.Sprintf("sequence validation failed: %v", err)), nil
		}
		return formatted(format, "sequence", result)
	}
}

func handleListRuleTypes(svc Services) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		return jsonResult(svc.Engine.RuleTypes())
	}
}

// resolve joins relative paths onto the server root.
func resolve(root, path string) string {
	if path == "" {
		return root
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// formatted renders result in format; console output is not offered since
// the client is not a terminal.
func formatted(format, tool string, result *domain.ValidationResult) (*mcplib.CallToolResult, error) {
	if format == "" {
		format = string(report.FormatJSON)
	}
	f, err := report.ParseFormat(format)
	if err != nil || f == report.FormatConsole {
		return errorResult(fmt.Sprintf("unsupported format %q (valid: json, yaml, md, sarif)", format)), nil
	}
	var buf bytes.Buffer
	if err := report.Render(&buf, f, tool, result); err != nil {
		return nil, fmt.Errorf("rendering result: %w", err)
	}
	return textResult(buf.String()), nil
}

// jsonResult marshals v to JSON and wraps it in a CallToolResult.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// textResult returns a plain text content result.
func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(text)},
	}
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
