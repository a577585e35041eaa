package photostat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/aben20807/exif-count/pkg/util"
)

// Walker lists the candidate photo files of the source directory, applying the
// extension and parent directory filters.
type Walker struct {
	opts       *Options
	fs         afero.Fs
	logger     *slog.Logger
	extensions map[string]struct{}
}

// NewWalker creates a new Walker instance.
func NewWalker(opts *Options, loggerHandler slog.Handler) (*Walker, error) {
	if opts.SourcePath == "" {
		return nil, fmt.Errorf("%w: source path cannot be empty", ErrConfigValidation)
	}
	extensions := util.ParseExtensions(opts.ImageExtensions)
	if len(extensions) == 0 {
		return nil, fmt.Errorf("%w: no image extensions configured", ErrConfigValidation)
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Walker{
		opts:       opts,
		fs:         fs,
		logger:     slog.New(loggerHandler).With(slog.String("component", "walker")),
		extensions: extensions,
	}, nil
}

// Collect returns the matching files in lexical order. Only the top level of the source
// directory is listed unless Recursive is set.
func (w *Walker) Collect(ctx context.Context) ([]string, error) {
	w.logger.Info("Starting directory walk", slog.String("path", w.opts.SourcePath), slog.Bool("recursive", w.opts.Recursive))
	var files []string
	var err error
	if w.opts.Recursive {
		files, err = w.collectRecursive(ctx)
	} else {
		files, err = w.collectFlat(ctx)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			w.logger.Info("Directory walk cancelled", slog.String("reason", err.Error()))
			return nil, err
		}
		w.logger.Error("Directory walk failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("directory walk failed: %w", err)
	}
	w.logger.Info("Directory walk completed", slog.Int("files", len(files)))
	return files, nil
}

func (w *Walker) collectFlat(ctx context.Context) ([]string, error) {
	entries, err := afero.ReadDir(w.fs, w.opts.SourcePath)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.opts.SourcePath, entry.Name())
		if w.accept(path) {
			files = append(files, path)
		}
	}
	return files, nil
}

func (w *Walker) collectRecursive(ctx context.Context) ([]string, error) {
	var files []string
	walkErr := afero.Walk(w.fs, w.opts.SourcePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == w.opts.SourcePath {
				return err
			}
			w.logger.Warn("Error accessing path during walk", slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() {
			return nil
		}
		if w.accept(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, walkErr
}

// accept applies the extension and parent directory filters.
func (w *Walker) accept(path string) bool {
	if !util.MatchesExtension(path, w.extensions) {
		w.logger.Debug("Path excluded by extension", slog.String("path", path))
		return false
	}
	if !util.ParentContains(w.filterPath(path), w.opts.DirFilter) {
		w.logger.Debug("Path excluded by directory filter", slog.String("path", path), slog.String("filter", w.opts.DirFilter))
		return false
	}
	return true
}

// filterPath rebuilds path on top of the source directory as the user wrote it, so
// the directory filter never sees the ancestors of a relative source.
func (w *Walker) filterPath(path string) string {
	base := w.opts.SourceArg
	if base == "" {
		return path
	}
	rel, err := filepath.Rel(w.opts.SourcePath, path)
	if err != nil {
		return path
	}
	return filepath.Join(base, rel)
}
