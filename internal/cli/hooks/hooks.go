// --- START OF FINAL REVISED FILE internal/cli/hooks/hooks.go ---
package hooks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aben20807/exif-count/pkg/photostat"
)

// --- TUI Message Structs ---

// RunStartMsg signals that the engine is about to dispatch Total files.
type RunStartMsg struct{ Total int }

// FileStatusUpdateMsg signals that a file reached a final status.
type FileStatusUpdateMsg struct {
	Path     string
	Status   photostat.Status
	Message  string
	Duration time.Duration
}

// RunCompleteMsg signals the completion of the entire run.
type RunCompleteMsg struct{ Report photostat.Report }

// --- Hook Implementation ---

// CLIHooks implements the photostat.Hooks interface, bridging engine events
// to the CLI's UI layer (TUI, Logger, Progress Bar).
type CLIHooks struct {
	logger         *slog.Logger
	tuiEnabled     bool
	verboseEnabled bool
	tuiProgram     TUIProgram  // Decoupled TUI program interface
	progressBar    ProgressBar // nil in log mode
	out            io.Writer   // Terminal the progress bar draws on
	mu             sync.Mutex  // Protects concurrent access to progressBar
}

// TUIProgram defines the subset of *tea.Program used by the hooks.
type TUIProgram interface {
	Send(msg tea.Msg)
}

// ProgressBar defines the subset of *progressbar.ProgressBar used by the hooks.
type ProgressBar interface {
	Add(num int) error
	Describe(description string)
	Finish() error
}

// NoOpTUIProgram provides a default null implementation.
type NoOpTUIProgram struct{}

// Send implements TUIProgram.
func (n *NoOpTUIProgram) Send(msg tea.Msg) {}

// --- Constructor ---

// NewCLIHooks creates a new CLIHooks instance.
// Exactly one presentation is active: the TUI when tuiEnabled, detailed logs when
// verboseEnabled, the progress bar when progBar is non-nil, plain logs otherwise.
func NewCLIHooks(logger *slog.Logger, tuiEnabled, verboseEnabled bool, tuiProg TUIProgram, progBar ProgressBar) *CLIHooks {
	if tuiProg == nil {
		tuiProg = &NoOpTUIProgram{}
	}
	return &CLIHooks{
		logger:         logger,
		tuiEnabled:     tuiEnabled,
		verboseEnabled: verboseEnabled,
		tuiProgram:     tuiProg,
		progressBar:    progBar,
		out:            os.Stderr,
	}
}

// SetOutput changes where the progress bar's trailing newline is written.
func (h *CLIHooks) SetOutput(w io.Writer) { h.out = w }

var _ photostat.Hooks = (*CLIHooks)(nil)

// --- Interface Method Implementations ---

// OnRunStart handles the event when the engine starts dispatching files.
func (h *CLIHooks) OnRunStart(total int) error {
	switch {
	case h.tuiEnabled:
		h.tuiProgram.Send(RunStartMsg{Total: total})
	case h.verboseEnabled:
		h.logger.Debug("Run started", slog.Int("files", total))
	case h.progressBar != nil:
		h.mu.Lock()
		h.progressBar.Describe("Reading EXIF")
		h.mu.Unlock()
	default:
		h.logger.Info("Counting EXIF values", slog.Int("files", total))
	}
	return nil // Engine ignores hook errors
}

// OnFileStatusUpdate handles the final status of each file. Calls arrive from the
// engine's collector loop one at a time, but the method stays safe for concurrent use.
func (h *CLIHooks) OnFileStatusUpdate(path string, status photostat.Status, message string, duration time.Duration) error {
	// TUI Mode: Send a message
	if h.tuiEnabled {
		h.tuiProgram.Send(FileStatusUpdateMsg{
			Path:     path,
			Status:   status,
			Message:  message,
			Duration: duration,
		})
		return nil
	}

	// Verbose Logging Mode
	if h.verboseEnabled {
		logLevel := slog.LevelDebug
		logMsg := "File status updated"
		attrs := []any{
			slog.String("path", path),
			slog.String("status", string(status)),
		}
		if duration > 0 {
			attrs = append(attrs, slog.Duration("duration", duration))
		}
		if message != "" {
			attrs = append(attrs, slog.String("message", message))
		}

		switch status {
		case photostat.StatusCounted:
			logLevel = slog.LevelInfo
		case photostat.StatusSkipped:
			logLevel = slog.LevelInfo
			logMsg = "File skipped"
		case photostat.StatusLapsed:
			// The engine already warned with "Task lapsed".
			logMsg = "File lapsed"
		}
		h.logger.Log(context.Background(), logLevel, logMsg, attrs...)
		return nil
	}

	// Progress Bar Mode (Non-Verbose, TTY)
	if h.progressBar != nil {
		h.mu.Lock()
		defer h.mu.Unlock()
		if status.IsFinal() {
			_ = h.progressBar.Add(1)
		}
		if status == photostat.StatusLapsed {
			h.progressBar.Describe(fmt.Sprintf("Lapsed: %s", path))
		}
		return nil
	}

	// Standard Log Mode (Non-Verbose, Non-TTY): the engine's own warnings and the run
	// summary are enough.
	return nil
}

// OnRunComplete sends the final report to the TUI or finalizes the progress bar.
func (h *CLIHooks) OnRunComplete(report photostat.Report) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(RunCompleteMsg{Report: report})
		return nil
	}
	if h.progressBar != nil {
		h.mu.Lock()
		_ = h.progressBar.Finish()
		h.mu.Unlock()
		// Keep the prompt (or the charts) off the progress bar's line.
		_, _ = fmt.Fprintln(h.out)
	}
	return nil
}

// --- END OF FINAL REVISED FILE internal/cli/hooks/hooks.go ---
