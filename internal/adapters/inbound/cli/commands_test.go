package cli_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/inbound/cli"
)

type resultJSON struct {
	Passed     bool `json:"passed"`
	ErrorCount int  `json:"error_count"`
	Issues     []struct {
		Severity string `json:"severity"`
		Message  string `json:"message"`
	} `json:"issues"`
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := cli.NewRootCmdForTest()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// shotTree returns a root containing README.md and a rule file outside it
// requiring the given glob.
func shotTree(t *testing.T, glob string) (root, rules string) {
	t.Helper()
	root = t.TempDir()
	writeFile(t, filepath.Join(root, "README.md"), "# shots\n")
	rules = filepath.Join(t.TempDir(), "rules.yaml")
	writeFile(t, rules, fmt.Sprintf("rules:\n  - name: required\n    type: must_exist\n    glob: %q\n", glob))
	return root, rules
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "vfxvox dev (none)\n", out)
}

func TestShotLintCmd_Passes(t *testing.T) {
	root, rules := shotTree(t, "README.md")

	out, err := run(t, "shotlint", root, "--rules", rules, "--format", "json")
	require.NoError(t, err)

	var res resultJSON
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Passed)
	assert.Empty(t, res.Issues)
}

func TestShotLintCmd_FailsWithExitOne(t *testing.T) {
	root, rules := shotTree(t, "docs/**/*.md")

	out, err := run(t, "shotlint", root, "--rules", rules, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, 1, cli.ExitCode(err))
	assert.Empty(t, cli.Message(err))

	var res resultJSON
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Passed)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "No matches for glob: docs/**/*.md", res.Issues[0].Message)
}

func TestShotLintCmd_FailOnNone(t *testing.T) {
	root, rules := shotTree(t, "docs/**/*.md")

	_, err := run(t, "shotlint", root, "--rules", rules, "--format", "json", "--fail-on", "none")
	assert.NoError(t, err)
}

func TestShotLintCmd_ConsoleOutput(t *testing.T) {
	root, rules := shotTree(t, "docs/**/*.md")

	out, err := run(t, "shotlint", root, "--rules", rules)
	require.Error(t, err)
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "No matches for glob: docs/**/*.md")
}

func TestShotLintCmd_ReportFile(t *testing.T) {
	root, rules := shotTree(t, "README.md")
	dest := filepath.Join(t.TempDir(), "report.md")

	out, err := run(t, "shotlint", root, "--rules", rules, "--format", "md", "--report", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "Report written to")

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# ShotLint Report")
}

func TestShotLintCmd_MissingRuleFile(t *testing.T) {
	root := t.TempDir()

	_, err := run(t, "shotlint", root, "--rules", filepath.Join(root, "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, 3, cli.ExitCode(err))
	assert.Contains(t, cli.Message(err), "rule file not found")
}

func TestShotLintCmd_RequiresRules(t *testing.T) {
	_, err := run(t, "shotlint", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, 3, cli.ExitCode(err))
}

func TestShotLintCmd_UnknownFormat(t *testing.T) {
	root, rules := shotTree(t, "README.md")

	_, err := run(t, "shotlint", root, "--rules", rules, "--format", "html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "html")
}

func TestShotLintCmd_MissingConfigFile(t *testing.T) {
	root, rules := shotTree(t, "README.md")

	_, err := run(t, "--config", filepath.Join(root, "missing.yaml"), "shotlint", root, "--rules", rules)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestShotLintCmd_ConfigFailOn(t *testing.T) {
	root, rules := shotTree(t, "docs/**/*.md")
	cfg := filepath.Join(t.TempDir(), "vfxvox.yaml")
	writeFile(t, cfg, "shotlint:\n  fail_on: none\n")

	_, err := run(t, "--config", cfg, "shotlint", root, "--rules", rules, "--format", "json")
	assert.NoError(t, err)
}

func pngFrames(t *testing.T, frames ...int) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range frames {
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8))))
		writeFile(t, filepath.Join(dir, fmt.Sprintf("plate.%04d.png", n)), buf.String())
	}
	return dir
}

func TestValidateSequenceCmd_Passes(t *testing.T) {
	dir := pngFrames(t, 1001, 1002, 1003)

	out, err := run(t, "validate-sequence", filepath.Join(dir, "plate.####.png"), "--format", "json")
	require.NoError(t, err)

	var res resultJSON
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Passed)
}

func TestValidateSequenceCmd_MissingFrames(t *testing.T) {
	dir := pngFrames(t, 1001, 1003)

	out, err := run(t, "validate-sequence", filepath.Join(dir, "plate.%04d.png"), "--format", "json", "--workers", "2")
	require.Error(t, err)
	assert.Equal(t, 1, cli.ExitCode(err))

	var res resultJSON
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotEmpty(t, res.Issues)
	assert.Equal(t, "Missing frames: [1002]", res.Issues[0].Message)
}

func TestValidateSequenceCmd_InvalidPattern(t *testing.T) {
	_, err := run(t, "validate-sequence", filepath.Join(t.TempDir(), "plate.png"))
	require.Error(t, err)
	assert.Equal(t, 3, cli.ExitCode(err))
	assert.Contains(t, cli.Message(err), "invalid sequence pattern")
}

func TestValidateSequenceCmd_ConflictingToggles(t *testing.T) {
	dir := pngFrames(t, 1001)

	_, err := run(t, "validate-sequence", filepath.Join(dir, "plate.####.png"),
		"--check-resolution", "--no-check-resolution")
	require.Error(t, err)
}

func TestHistoryCmd_Empty(t *testing.T) {
	out, err := run(t, "history", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No run history found.")
}

func TestHistoryCmd_RecordedRun(t *testing.T) {
	root, rules := shotTree(t, "docs/**/*.md")

	_, err := run(t, "shotlint", root, "--rules", rules, "--format", "json", "--record")
	require.Error(t, err)

	out, err := run(t, "history", root, "--json")
	require.NoError(t, err)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "shotlint", entries[0]["tool"])

	out, err = run(t, "history", root, "--json", "--tool", "validate-sequence")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := cli.NewRootCmdForTest()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"version", "shotlint", "validate-sequence", "init", "history", "mcp"} {
		assert.Contains(t, names, want)
	}
}
