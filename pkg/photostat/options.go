package photostat

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/afero"
)

// Hooks defines callbacks for progress updates during a run.
// OnRunStart is called once before any file is dispatched, OnFileStatusUpdate once per
// file in completion order, and OnRunComplete once when the run ends (aborted or not).
type Hooks interface {
	OnRunStart(total int) error
	OnFileStatusUpdate(path string, status Status, message string, duration time.Duration) error
	OnRunComplete(report Report) error
}

// NoOpHooks provides a default, do-nothing implementation of the Hooks interface.
type NoOpHooks struct{}

// OnRunStart implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnRunStart(total int) error { return nil }

// OnFileStatusUpdate implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnFileStatusUpdate(path string, status Status, message string, duration time.Duration) error {
	return nil
}

// OnRunComplete implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnRunComplete(report Report) error { return nil }

// Extractor reads the tracked fields of one file.
// It returns a record only when every tracked field is present; otherwise it returns
// an error wrapping ErrNoMetadata, ErrIncompleteMetadata or ErrReadFailed.
// Implementations must be safe for concurrent use and should honour ctx.
type Extractor interface {
	Extract(ctx context.Context, path string) (*FileRecord, error)
}

// Options holds all configuration for a run.
type Options struct {
	// --- Source selection ---
	SourcePath      string `mapstructure:"src"`        // Required: directory to scan
	SourceArg       string `mapstructure:"-"`          // Source as the user gave it; DirFilter matches against it
	Recursive       bool   `mapstructure:"recursive"`  // Descend into subdirectories
	DirFilter       string `mapstructure:"dir_filter"` // Substring required in the parent directory path
	ImageExtensions string `mapstructure:"img_exts"`   // Comma separated, case-insensitive

	// --- Behavior & Control ---
	AppVersion     string `mapstructure:"-"`          // Set by the CLI, shown in the TUI header
	ConfigFilePath string `mapstructure:"-"`          // Path to the loaded config file (for reporting)
	ProfileName    string `mapstructure:"-"`          // Name of the profile used (for reporting)
	Verbose        bool   `mapstructure:"verbose"`    // Enable debug logging
	TuiEnabled     bool   `mapstructure:"tuiEnabled"` // Hint for CLI to use TUI (ignored if Verbose)

	// --- Performance ---
	Concurrency       int           `mapstructure:"concurrency"` // Number of workers (0=auto)
	TaskTimeoutString string        `mapstructure:"taskTimeout"` // Raw duration string from config/flags
	TaskTimeout       time.Duration `mapstructure:"-"`           // Derived from TaskTimeoutString

	// --- Output ---
	OutputFormat OutputFormat `mapstructure:"outputFormat"` // ("text", "json", "yaml", "toml")
	ChartWidth   int          `mapstructure:"chartWidth"`   // Longest bar length; 0 derives it from the terminal

	// --- Injected Dependencies ---
	Fs         afero.Fs     `mapstructure:"-"` // Filesystem; afero.NewOsFs() when nil
	EventHooks Hooks        `mapstructure:"-"` // Progress callbacks; NoOpHooks when nil
	Logger     slog.Handler `mapstructure:"-"` // Required: Logging backend
	Extractor  Extractor    `mapstructure:"-"` // Optional: ExifExtractor over Fs when nil
}
