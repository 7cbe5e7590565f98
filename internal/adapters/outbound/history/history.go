// Package history keeps a log of validation runs next to the validated
// directory (or, for sequences, next to the frames).
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

// File is the history location relative to the validated directory.
const File = ".vfxvox/history/runs.json"

// MaxEntries bounds the history; the oldest runs are dropped first.
const MaxEntries = 500

// FileHistory implements domain.RunHistory as one JSON array per directory.
type FileHistory struct{}

func New() *FileHistory {
	return &FileHistory{}
}

// Save appends entry to the runs recorded under dir. The file is replaced
// through a rename so a run killed mid-write leaves the previous log intact.
func (h *FileHistory) Save(dir string, entry domain.RunEntry) error {
	runs, err := h.Load(dir)
	if err != nil {
		return err
	}

	runs = append(runs, entry)
	if len(runs) > MaxEntries {
		runs = runs[len(runs)-MaxEntries:]
	}

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run history: %w", err)
	}

	target := filepath.Join(dir, File)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "runs-*.json")
	if err != nil {
		return fmt.Errorf("writing run history: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing run history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing run history: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing run history: %w", err)
	}
	return os.Rename(tmp.Name(), target)
}

// Load returns the runs recorded under dir, oldest first. No history file
// means no runs.
func (h *FileHistory) Load(dir string) ([]domain.RunEntry, error) {
	data, err := os.ReadFile(filepath.Join(dir, File))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading run history: %w", err)
	}

	var runs []domain.RunEntry
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", File, err)
	}
	return runs, nil
}

// LoadTool is Load restricted to the runs of one tool ("shotlint",
// "validate-sequence"). An empty tool keeps every run.
func (h *FileHistory) LoadTool(dir, tool string) ([]domain.RunEntry, error) {
	runs, err := h.Load(dir)
	if err != nil || tool == "" {
		return runs, err
	}
	var out []domain.RunEntry
	for _, r := range runs {
		if r.Tool == tool {
			out = append(out, r)
		}
	}
	return out, nil
}
