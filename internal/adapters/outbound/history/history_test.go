package history_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/outbound/history"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	entry := domain.RunEntry{
		Timestamp:  "2026-02-25T10:00:00Z",
		Tool:       "shotlint",
		Target:     dir,
		CommitHash: "abc1234",
		Errors:     2,
		Warnings:   1,
	}

	err := h.Save(dir, entry)
	require.NoError(t, err)

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry, entries[0])
}

func TestHistory_AppendMultiple(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	require.NoError(t, h.Save(dir, domain.RunEntry{Timestamp: "t1", Tool: "shotlint", Errors: 3}))
	require.NoError(t, h.Save(dir, domain.RunEntry{Timestamp: "t2", Tool: "validate-sequence", Errors: 1}))
	require.NoError(t, h.Save(dir, domain.RunEntry{Timestamp: "t3", Tool: "shotlint", Passed: true}))

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 3, entries[0].Errors)
	assert.True(t, entries[2].Passed)
}

func TestHistory_LoadEmpty(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	entries, err := h.Load(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistory_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	nestedDir := filepath.Join(dir, "deep", "nested")
	h := history.New()

	err := h.Save(nestedDir, domain.RunEntry{Timestamp: "t1", Tool: "shotlint"})
	require.NoError(t, err)

	entries, err := h.Load(nestedDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestHistory_DropsOldest(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	for i := range history.MaxEntries + 2 {
		require.NoError(t, h.Save(dir, domain.RunEntry{Timestamp: fmt.Sprintf("t%d", i)}))
	}

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, history.MaxEntries)
	assert.Equal(t, "t2", entries[0].Timestamp)
}

func TestHistory_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, history.File)
	require.NoError(t, os.MkdirAll(filepath.Dir(fp), 0755))
	require.NoError(t, os.WriteFile(fp, []byte("{not json"), 0644))

	_, err := history.New().Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
}

func TestHistory_LoadTool(t *testing.T) {
	dir := t.TempDir()
	h := history.New()
	require.NoError(t, h.Save(dir, domain.RunEntry{Tool: "shotlint", Timestamp: "t0"}))
	require.NoError(t, h.Save(dir, domain.RunEntry{Tool: "validate-sequence", Timestamp: "t1"}))
	require.NoError(t, h.Save(dir, domain.RunEntry{Tool: "shotlint", Timestamp: "t2"}))

	runs, err := h.LoadTool(dir, "shotlint")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "t0", runs[0].Timestamp)
	assert.Equal(t, "t2", runs[1].Timestamp)

	runs, err = h.LoadTool(dir, "")
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestHistory_SaveLeavesOnlyTheLog(t *testing.T) {
	dir := t.TempDir()
	h := history.New()
	require.NoError(t, h.Save(dir, domain.RunEntry{Tool: "shotlint"}))
	require.NoError(t, h.Save(dir, domain.RunEntry{Tool: "shotlint"}))

	entries, err := os.ReadDir(filepath.Dir(filepath.Join(dir, history.File)))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "runs.json", entries[0].Name())
}
