package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/outbound/config"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/outbound/history"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/application"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain/lint"
)

func testServices() Services {
	engine := lint.New()
	return Services{
		ShotLint:  application.NewShotLintService(config.NewRulesLoader(), engine, nil, history.New(), nil),
		Sequence:  application.NewSequenceService(nil, nil, history.New(), nil),
		Engine:    engine,
		History:   history.New(),
		Sequences: domain.DefaultConfig().Sequences,
	}
}

func callTool(t *testing.T, handler func(context.Context, mcplib.CallToolRequest) (*mcplib.CallToolResult, error), args map[string]any) (*mcplib.CallToolResult, string) {
	t.Helper()
	var req mcplib.CallToolRequest
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok)
	return res, text.Text
}

func TestNewVFXVoxMCPServer(t *testing.T) {
	s := NewVFXVoxMCPServer(".", testServices(), "dev")
	require.NotNil(t, s)

	tools := s.ListTools()
	expectedTools := []string{
		"vfxvox_shotlint",
		"vfxvox_validate_sequence",
		"vfxvox_list_rule_types",
	}
	for _, name := range expectedTools {
		_, exists := tools[name]
		assert.True(t, exists, "tool %q should be registered", name)
	}
	assert.Len(t, tools, len(expectedTools))
}

func TestShotLintTool(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "rules.yaml"), []byte(`
rules:
  - name: editorial
    type: must_exist
    glob: "editorial/*.edl"
`), 0644))

	res, text := callTool(t, handleShotLint(root, testServices()), map[string]any{"rules": "rules.yaml"})
	assert.False(t, res.IsError)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &decoded))
	assert.Equal(t, false, decoded["passed"])
	assert.Contains(t, text, "No matches for glob: editorial/*.edl")
}

func TestShotLintTool_Errors(t *testing.T) {
	root := t.TempDir()

	res, _ := callTool(t, handleShotLint(root, testServices()), map[string]any{})
	assert.True(t, res.IsError)

	res, text := callTool(t, handleShotLint(root, testServices()), map[string]any{"rules": "missing.yaml"})
	assert.True(t, res.IsError)
	assert.Contains(t, text, "rule file not found")
}

func TestValidateSequenceTool(t *testing.T) {
	root := t.TempDir()
	for _, n := range []string{"1001", "1002", "1004"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, "shot."+n+".exr"), []byte("x"), 0644))
	}

	res, text := callTool(t, handleValidateSequence(root, testServices()), map[string]any{
		"pattern":          "shot.####.exr",
		"check_resolution": false,
		"check_bit_depth":  false,
		"format":           "md",
	})
	assert.False(t, res.IsError)
	assert.Contains(t, text, "# Sequence Validation Report")
	assert.Contains(t, text, "Missing frames: [1003]")
}

func TestValidateSequenceTool_RejectsConsoleFormat(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "shot.1001.exr"), []byte("x"), 0644))

	res, text := callTool(t, handleValidateSequence(root, testServices()), map[string]any{
		"pattern": "shot.%04d.exr",
		"format":  "console",
	})
	assert.True(t, res.IsError)
	assert.Contains(t, text, "unsupported format")
}

func TestListRuleTypesTool(t *testing.T) {
	_, text := callTool(t, handleListRuleTypes(testServices()), nil)

	var types []string
	require.NoError(t, json.Unmarshal([]byte(text), &types))
	assert.Equal(t, []string{"path_pattern", "filename_regex", "frame_sequence", "must_exist", "plugin"}, types)
}

func TestHistoryResource(t *testing.T) {
	root := t.TempDir()
	svc := testServices()
	require.NoError(t, svc.History.Save(root, domain.RunEntry{Timestamp: "2026-10-01T10:00:00Z", Tool: "shotlint", Errors: 1}))

	var req mcplib.ReadResourceRequest
	req.Params.URI = historyURI
	contents, err := handleHistoryResource(root, svc)(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text := contents[0].(mcplib.TextResourceContents).Text
	assert.Contains(t, text, `"tool": "shotlint"`)

	req.Params.URI = historyURI + "/elsewhere"
	contents, err = handleHistoryResource(root, svc)(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "[]", contents[0].(mcplib.TextResourceContents).Text)
}
