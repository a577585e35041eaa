package photostat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Engine fans a list of files out to a pool of workers, extracts their metadata and
// aggregates the values into a frequency table.
type Engine struct {
	opts        *Options
	logger      *slog.Logger
	extractor   Extractor
	hooks       Hooks
	concurrency int
	taskTimeout time.Duration
}

// taskResult is the outcome of one file, produced by a worker.
type taskResult struct {
	path     string
	status   Status
	reason   string
	details  string
	duration time.Duration
}

// extraction carries the Extractor's return values out of its goroutine.
type extraction struct {
	record *FileRecord
	err    error
}

// NewEngine validates opts and creates an Engine, filling in default dependencies.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Logger == nil {
		return nil, fmt.Errorf("%w: Logger implementation (slog.Handler) cannot be nil", ErrConfigValidation)
	}
	if opts.Concurrency < 0 {
		return nil, fmt.Errorf("%w: concurrency cannot be negative", ErrConfigValidation)
	}
	if opts.TaskTimeout < 0 {
		return nil, fmt.Errorf("%w: task timeout cannot be negative", ErrConfigValidation)
	}
	logger := slog.New(opts.Logger).With(slog.String("component", "engine"))

	if opts.EventHooks == nil {
		opts.EventHooks = &NoOpHooks{}
	}
	if opts.Extractor == nil {
		opts.Extractor = NewExifExtractor(opts.Fs)
		logger.Debug("Extractor not provided, using default ExifExtractor.")
	}

	concurrency := opts.Concurrency
	if concurrency == 0 {
		concurrency = runtime.NumCPU()
		opts.Concurrency = concurrency
		logger.Debug("Concurrency auto-detected", "count", concurrency)
	}
	taskTimeout := opts.TaskTimeout
	if taskTimeout == 0 {
		taskTimeout = DefaultTaskTimeout
		opts.TaskTimeout = taskTimeout
	}

	return &Engine{
		opts:        &opts,
		logger:      logger,
		extractor:   opts.Extractor,
		hooks:       opts.EventHooks,
		concurrency: concurrency,
		taskTimeout: taskTimeout,
	}, nil
}

// Run processes files and returns the report holding the final frequency table.
// Per-file problems never stop the run. If ctx is cancelled before every file has
// completed, outstanding work is abandoned and Run returns ErrAborted together with a
// report that carries no table.
func (e *Engine) Run(ctx context.Context, files []string) (Report, error) {
	startTime := time.Now()
	e.logger.Info("Starting run", "files", len(files), "concurrency", e.concurrency, "taskTimeout", e.taskTimeout)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if hookErr := e.hooks.OnRunStart(len(files)); hookErr != nil {
		e.logger.Warn("OnRunStart hook returned an error", slog.String("error", hookErr.Error()))
	}

	aggregator := NewAggregator()
	results := newReportAggregator()

	jobs := make(chan string, e.concurrency)
	resultsChan := make(chan taskResult, e.concurrency)
	var wg sync.WaitGroup

	e.startWorkers(runCtx, &wg, aggregator, jobs, resultsChan)
	go e.dispatch(runCtx, files, jobs)
	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	// Results arrive in completion order; this loop is the only consumer, so hooks
	// are never called concurrently.
	for res := range resultsChan {
		results.add(res)
		if hookErr := e.hooks.OnFileStatusUpdate(res.path, res.status, res.message(), res.duration); hookErr != nil {
			e.logger.Warn("OnFileStatusUpdate hook returned an error", slog.String("path", res.path), slog.String("error", hookErr.Error()))
		}
	}

	aborted := ctx.Err() != nil && results.completed() < len(files)
	var table FrequencyTable
	if !aborted {
		table = aggregator.Snapshot()
	}
	report := results.getReport(e.opts, startTime, len(files), table, aborted)

	e.logger.Info("Run finished",
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("counted", report.Summary.CountedCount),
		slog.Int("skipped", report.Summary.SkippedCount),
		slog.Int("lapsed", report.Summary.LapsedCount),
		slog.Bool("aborted", aborted),
	)
	if hookErr := e.hooks.OnRunComplete(report); hookErr != nil {
		e.logger.Warn("OnRunComplete hook returned an error", slog.String("error", hookErr.Error()))
	}

	if aborted {
		return report, fmt.Errorf("%w: %w", ErrAborted, ctx.Err())
	}
	return report, nil
}

// dispatch feeds files to the workers until all are sent or ctx is cancelled.
func (e *Engine) dispatch(ctx context.Context, files []string, jobs chan<- string) {
	defer close(jobs)
	for _, path := range files {
		select {
		case jobs <- path:
		case <-ctx.Done():
			e.logger.Debug("Dispatch stopped (context cancelled)")
			return
		}
	}
}

// startWorkers launches the worker goroutines.
func (e *Engine) startWorkers(ctx context.Context, wg *sync.WaitGroup, aggregator *Aggregator, jobs <-chan string, resultsChan chan<- taskResult) {
	e.logger.Debug("Starting worker pool", "count", e.concurrency)
	for i := 0; i < e.concurrency; i++ {
		wg.Add(1)
		go e.processFilesWorker(ctx, wg, i, aggregator, jobs, resultsChan)
	}
}

// processFilesWorker is the main function executed by each worker goroutine.
func (e *Engine) processFilesWorker(ctx context.Context, wg *sync.WaitGroup, workerID int, aggregator *Aggregator, jobs <-chan string, resultsChan chan<- taskResult) {
	defer wg.Done()
	wLogger := e.logger.With(slog.Int("workerID", workerID))
	wLogger.Debug("Worker started")

	for {
		select {
		case path, ok := <-jobs:
			if !ok {
				wLogger.Debug("Worker shutting down (channel closed)")
				return
			}
			res, ok := e.processFile(ctx, wLogger, aggregator, path)
			if !ok {
				wLogger.Debug("Worker shutting down (context cancelled)")
				return
			}
			resultsChan <- res
		case <-ctx.Done():
			wLogger.Debug("Worker shutting down (context cancelled)")
			return
		}
	}
}

// processFile extracts one file under the per-task timeout and, if a complete record
// arrives in time, adds it to the aggregator. It returns false when the run context
// was cancelled, in which case the file has no result.
func (e *Engine) processFile(ctx context.Context, logger *slog.Logger, aggregator *Aggregator, path string) (taskResult, bool) {
	if ctx.Err() != nil {
		return taskResult{}, false
	}
	start := time.Now()
	res := taskResult{path: e.displayPath(path)}

	taskCtx, cancel := context.WithTimeout(ctx, e.taskTimeout)
	defer cancel()

	done := make(chan extraction, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- extraction{err: fmt.Errorf("%w: extractor panic: %v", ErrReadFailed, r)}
			}
		}()
		record, err := e.extractor.Extract(taskCtx, path)
		done <- extraction{record: record, err: err}
	}()

	var out extraction
	select {
	case out = <-done:
	case <-taskCtx.Done():
	}
	res.duration = time.Since(start)

	// A result that raced the deadline is still treated as lapsed.
	if taskCtx.Err() != nil {
		if ctx.Err() != nil {
			return taskResult{}, false
		}
		logger.Warn("Task lapsed", slog.String("path", res.path), slog.Duration("timeout", e.taskTimeout))
		res.status = StatusLapsed
		res.details = fmt.Sprintf("%s after %s", ErrTaskLapsed, e.taskTimeout)
		return res, true
	}

	if out.err != nil || out.record == nil {
		res.status = StatusSkipped
		res.reason = skipReason(out.err)
		if out.err != nil {
			res.details = out.err.Error()
		}
		logger.Debug("File skipped", slog.String("path", res.path), slog.String("reason", res.reason), slog.String("details", res.details))
		return res, true
	}

	aggregator.Add(out.record)
	res.status = StatusCounted
	return res, true
}

// displayPath returns path relative to the source directory when possible.
func (e *Engine) displayPath(path string) string {
	if e.opts.SourcePath == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(e.opts.SourcePath, path)
	if err != nil || rel == "." || rel == "" {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// skipReason classifies an extraction error into one of the SkipReason constants.
func skipReason(err error) string {
	switch {
	case errors.Is(err, ErrIncompleteMetadata):
		return SkipReasonIncomplete
	case errors.Is(err, ErrReadFailed):
		return SkipReasonUnreadable
	default:
		return SkipReasonNoMetadata
	}
}

// message renders the hook message for a result.
func (r taskResult) message() string {
	if r.reason == "" {
		return r.details
	}
	if r.details == "" {
		return r.reason
	}
	return r.reason + ": " + r.details
}

// --- reportAggregator ---

// reportAggregator collects per-file outcomes during the run.
type reportAggregator struct {
	mu           sync.Mutex
	countedCount int
	skippedFiles []SkippedInfo
	lapsedFiles  []string
}

// newReportAggregator creates a new report aggregator.
func newReportAggregator() *reportAggregator {
	return &reportAggregator{
		skippedFiles: make([]SkippedInfo, 0, 128),
		lapsedFiles:  make([]string, 0),
	}
}

// add records one task result (thread-safe).
func (a *reportAggregator) add(res taskResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch res.status {
	case StatusCounted:
		a.countedCount++
	case StatusSkipped:
		a.skippedFiles = append(a.skippedFiles, SkippedInfo{Path: res.path, Reason: res.reason, Details: res.details})
	case StatusLapsed:
		a.lapsedFiles = append(a.lapsedFiles, res.path)
	}
}

// completed returns the number of files with a final result.
func (a *reportAggregator) completed() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.countedCount + len(a.skippedFiles) + len(a.lapsedFiles)
}

// getReport compiles and returns the final Report struct.
func (a *reportAggregator) getReport(opts *Options, startTime time.Time, total int, table FrequencyTable, aborted bool) Report {
	a.mu.Lock()
	skipped := make([]SkippedInfo, len(a.skippedFiles))
	copy(skipped, a.skippedFiles)
	lapsed := make([]string, len(a.lapsedFiles))
	copy(lapsed, a.lapsedFiles)
	counted := a.countedCount
	a.mu.Unlock()

	return Report{
		Summary: ReportSummary{
			SourcePath:         opts.SourcePath,
			ProfileUsed:        opts.ProfileName,
			ConfigFilePath:     opts.ConfigFilePath,
			TotalFiles:         total,
			CompletedCount:     counted + len(skipped) + len(lapsed),
			CountedCount:       counted,
			SkippedCount:       len(skipped),
			LapsedCount:        len(lapsed),
			Aborted:            aborted,
			DurationSeconds:    time.Since(startTime).Seconds(),
			Concurrency:        opts.Concurrency,
			TaskTimeoutSeconds: opts.TaskTimeout.Seconds(),
			Timestamp:          time.Now().UTC(),
			SchemaVersion:      ReportSchemaVersion,
		},
		SkippedFiles: skipped,
		LapsedFiles:  lapsed,
		Table:        table,
	}
}
