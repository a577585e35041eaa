package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/aben20807/exif-count/internal/cli/hooks"
	"github.com/aben20807/exif-count/internal/cli/ui"
	"github.com/aben20807/exif-count/pkg/photostat"
)

// uiMode is the presentation chosen for live progress.
type uiMode int

const (
	modeLog uiMode = iota
	modeProgressBar
	modeTUI
)

// isTerminal is replaced in tests.
var isTerminal = func(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }

// Run orchestrates the main application logic after configuration loading.
// It collects the candidate files, runs the engine with live progress on stderr and
// writes the distributions to out. An interrupted run returns an error wrapping
// photostat.ErrAborted and writes nothing to out.
func Run(ctx context.Context, opts photostat.Options, logger *slog.Logger, out io.Writer) error {
	logger.Debug("Effective arguments",
		slog.String("src", opts.SourcePath),
		slog.Bool("recursive", opts.Recursive),
		slog.String("dir_filter", opts.DirFilter),
		slog.String("img_exts", opts.ImageExtensions),
		slog.Int("concurrency", opts.Concurrency),
		slog.Duration("taskTimeout", opts.TaskTimeout),
		slog.String("outputFormat", string(opts.OutputFormat)),
	)

	walker, err := photostat.NewWalker(&opts, opts.Logger)
	if err != nil {
		return err
	}
	files, err := walker.Collect(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", photostat.ErrAborted, err)
		}
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var report photostat.Report
	switch selectMode(opts) {
	case modeTUI:
		report, err = runWithTUI(runCtx, cancel, opts, logger, files)
	case modeProgressBar:
		bar := progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Scanning"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(65*time.Millisecond),
		)
		opts.EventHooks = hooks.NewCLIHooks(logger, false, false, nil, bar)
		// The bar redraws its line on stderr; only errors may interrupt it.
		opts.Logger = &minLevelHandler{Handler: opts.Logger, min: slog.LevelError}
		report, err = runEngine(runCtx, opts, files)
	default:
		opts.EventHooks = hooks.NewCLIHooks(logger, false, opts.Verbose, nil, nil)
		report, err = runEngine(runCtx, opts, files)
	}

	logSummary(logger, report)
	if err != nil {
		if errors.Is(err, photostat.ErrAborted) {
			logger.Warn("Run aborted, no distribution written")
		}
		return err
	}

	return WriteOutput(out, opts, report, logger)
}

// selectMode picks the progress presentation. The TUI and the progress bar are only
// used when stderr is a terminal; verbose runs always log.
func selectMode(opts photostat.Options) uiMode {
	if opts.Verbose || !isTerminal(os.Stderr) {
		return modeLog
	}
	if opts.TuiEnabled {
		return modeTUI
	}
	return modeProgressBar
}

func runEngine(ctx context.Context, opts photostat.Options, files []string) (photostat.Report, error) {
	engine, err := photostat.NewEngine(opts)
	if err != nil {
		return photostat.Report{}, err
	}
	return engine.Run(ctx, files)
}

// runWithTUI runs the engine in the background while the TUI owns the terminal.
// Quitting the TUI cancels the run.
func runWithTUI(ctx context.Context, cancel context.CancelFunc, opts photostat.Options, logger *slog.Logger, files []string) (photostat.Report, error) {
	model := ui.NewModel(opts.AppVersion, cancel)
	program := tea.NewProgram(&model, tea.WithOutput(os.Stderr))
	opts.EventHooks = hooks.NewCLIHooks(logger, true, false, program, nil)
	// The TUI owns stderr while it runs; engine logs would tear its frames.
	opts.Logger = slog.NewTextHandler(io.Discard, nil)

	type result struct {
		report photostat.Report
		err    error
	}
	done := make(chan result, 1)
	go func() {
		report, err := runEngine(ctx, opts, files)
		done <- result{report, err}
	}()

	if _, err := program.Run(); err != nil {
		logger.Warn("TUI exited with an error", slog.String("error", err.Error()))
		cancel()
	}
	res := <-done
	return res.report, res.err
}

// minLevelHandler drops records below min before they reach the wrapped handler.
type minLevelHandler struct {
	slog.Handler
	min slog.Level
}

func (h *minLevelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.min && h.Handler.Enabled(ctx, level)
}

func (h *minLevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &minLevelHandler{Handler: h.Handler.WithAttrs(attrs), min: h.min}
}

func (h *minLevelHandler) WithGroup(name string) slog.Handler {
	return &minLevelHandler{Handler: h.Handler.WithGroup(name), min: h.min}
}

// logSummary writes the final counts the way the report records them.
func logSummary(logger *slog.Logger, report photostat.Report) {
	s := report.Summary
	attrs := []any{
		slog.Int("total", s.TotalFiles),
		slog.Int("counted", s.CountedCount),
		slog.Int("skipped", s.SkippedCount),
		slog.Int("lapsed", s.LapsedCount),
		slog.Float64("durationSeconds", s.DurationSeconds),
	}
	if s.Aborted {
		logger.Warn("Run summary", attrs...)
		return
	}
	logger.Info("Run summary", attrs...)
	for _, path := range report.LapsedFiles {
		logger.Debug("Lapsed file", slog.String("path", path))
	}
	for _, skipped := range report.SkippedFiles {
		logger.Debug("Skipped file", slog.String("path", skipped.Path), slog.String("reason", skipped.Reason))
	}
}
