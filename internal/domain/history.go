package domain

// RunEntry summarizes one recorded validation run.
type RunEntry struct {
	Timestamp  string `json:"timestamp"`
	Tool       string `json:"tool"`
	Target     string `json:"target"`
	CommitHash string `json:"commit_hash,omitempty"`
	Passed     bool   `json:"passed"`
	Errors     int    `json:"errors"`
	Warnings   int    `json:"warnings"`
	Infos      int    `json:"infos"`
}

// NewRunEntry summarizes result for tool run against target.
func NewRunEntry(timestamp, tool, target string, result *ValidationResult) RunEntry {
	return RunEntry{
		Timestamp: timestamp,
		Tool:      tool,
		Target:    target,
		Passed:    result.Passed(),
		Errors:    result.ErrorCount(),
		Warnings:  result.WarningCount(),
		Infos:     result.InfoCount(),
	}
}
