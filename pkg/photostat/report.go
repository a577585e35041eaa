package photostat

import "time"

// Report summarizes the result of a single run.
type Report struct {
	Summary      ReportSummary  `json:"summary" yaml:"summary" toml:"summary"`
	SkippedFiles []SkippedInfo  `json:"skippedFiles" yaml:"skippedFiles" toml:"skippedFiles"`
	LapsedFiles  []string       `json:"lapsedFiles" yaml:"lapsedFiles" toml:"lapsedFiles"`
	Table        FrequencyTable `json:"-" yaml:"-" toml:"-"` // nil when the run was aborted
}

// ReportSummary contains aggregated statistics for a run.
type ReportSummary struct {
	SourcePath         string    `json:"sourcePath" yaml:"sourcePath" toml:"sourcePath"`
	ProfileUsed        string    `json:"profileUsed,omitempty" yaml:"profileUsed,omitempty" toml:"profileUsed,omitempty"`
	ConfigFilePath     string    `json:"configFilePath,omitempty" yaml:"configFilePath,omitempty" toml:"configFilePath,omitempty"`
	TotalFiles         int       `json:"totalFiles" yaml:"totalFiles" toml:"totalFiles"`
	CompletedCount     int       `json:"completedCount" yaml:"completedCount" toml:"completedCount"`
	CountedCount       int       `json:"countedCount" yaml:"countedCount" toml:"countedCount"`
	SkippedCount       int       `json:"skippedCount" yaml:"skippedCount" toml:"skippedCount"`
	LapsedCount        int       `json:"lapsedCount" yaml:"lapsedCount" toml:"lapsedCount"`
	Aborted            bool      `json:"aborted" yaml:"aborted" toml:"aborted"`
	DurationSeconds    float64   `json:"durationSeconds" yaml:"durationSeconds" toml:"durationSeconds"`
	Concurrency        int       `json:"concurrency" yaml:"concurrency" toml:"concurrency"`
	TaskTimeoutSeconds float64   `json:"taskTimeoutSeconds" yaml:"taskTimeoutSeconds" toml:"taskTimeoutSeconds"`
	Timestamp          time.Time `json:"timestamp" yaml:"timestamp" toml:"timestamp"`
	SchemaVersion      string    `json:"schemaVersion,omitempty" yaml:"schemaVersion,omitempty" toml:"schemaVersion,omitempty"`
}

// SkippedInfo details a file that did not contribute to the counts.
type SkippedInfo struct {
	Path    string `json:"path" yaml:"path" toml:"path"`
	Reason  string `json:"reason" yaml:"reason" toml:"reason"`
	Details string `json:"details" yaml:"details" toml:"details"`
}
