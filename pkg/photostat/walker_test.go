package photostat_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aben20807/exif-count/internal/testutil"
	"github.com/aben20807/exif-count/pkg/photostat"
)

func setupWalkerFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, p := range []string{
		"/src/a.jpg",
		"/src/B.JPEG",
		"/src/notes.txt",
		"/src/raw.png",
		"/src/2023_trip/c.jpg",
		"/src/2023_trip/deep/d.tiff",
		"/src/other/e.jpg",
	} {
		testutil.CreateDummyFile(t, fs, p, []byte("x"))
	}
	return fs
}

func rel(t *testing.T, files []string) []string {
	t.Helper()
	out := make([]string, len(files))
	for i, f := range files {
		r, err := filepath.Rel("/src", f)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func TestWalker_Collect(t *testing.T) {
	testCases := []struct {
		name      string
		recursive bool
		filter    string
		exts      string
		want      []string
	}{
		{"flat default extensions", false, "", photostat.DefaultImageExtensions, []string{"B.JPEG", "a.jpg", "raw.png"}},
		{"recursive", true, "", photostat.DefaultImageExtensions, []string{"2023_trip/c.jpg", "2023_trip/deep/d.tiff", "B.JPEG", "a.jpg", "other/e.jpg", "raw.png"}},
		{"recursive with dir filter", true, "2023", photostat.DefaultImageExtensions, []string{"2023_trip/c.jpg", "2023_trip/deep/d.tiff"}},
		{"custom extensions", true, "", ".TIFF, png", []string{"2023_trip/deep/d.tiff", "raw.png"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := &photostat.Options{
				SourcePath:      "/src",
				Recursive:       tc.recursive,
				DirFilter:       tc.filter,
				ImageExtensions: tc.exts,
				Fs:              setupWalkerFs(t),
			}
			w, err := photostat.NewWalker(opts, testutil.DiscardLogger())
			require.NoError(t, err)

			files, err := w.Collect(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.want, rel(t, files))
		})
	}
}

func TestWalker_Validation(t *testing.T) {
	_, err := photostat.NewWalker(&photostat.Options{ImageExtensions: "jpg"}, testutil.DiscardLogger())
	assert.ErrorIs(t, err, photostat.ErrConfigValidation)

	_, err = photostat.NewWalker(&photostat.Options{SourcePath: "/src", ImageExtensions: " , "}, testutil.DiscardLogger())
	assert.ErrorIs(t, err, photostat.ErrConfigValidation)
}

func TestWalker_MissingSource(t *testing.T) {
	for _, recursive := range []bool{false, true} {
		opts := &photostat.Options{SourcePath: "/nope", Recursive: recursive, ImageExtensions: "jpg", Fs: afero.NewMemMapFs()}
		w, err := photostat.NewWalker(opts, testutil.DiscardLogger())
		require.NoError(t, err)
		_, err = w.Collect(context.Background())
		assert.Error(t, err, "recursive=%v", recursive)
	}
}

func TestWalker_Cancelled(t *testing.T) {
	opts := &photostat.Options{SourcePath: "/src", Recursive: true, ImageExtensions: "jpg", Fs: setupWalkerFs(t)}
	w, err := photostat.NewWalker(opts, testutil.DiscardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = w.Collect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWalker_DirFilterIgnoresSourceAncestors(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, p := range []string{
		"/home/trip2023/c.jpg",
		"/home/trip2023/misc/a.jpg",
		"/home/trip2023/2023_best/b.jpg",
	} {
		testutil.CreateDummyFile(t, fs, p, []byte("x"))
	}

	testCases := []struct {
		name      string
		sourceArg string
		want      []string
	}{
		{"relative source", ".", []string{"/home/trip2023/2023_best/b.jpg"}},
		{"relative source with subdirectory", "../trip2023", []string{"/home/trip2023/2023_best/b.jpg", "/home/trip2023/c.jpg", "/home/trip2023/misc/a.jpg"}},
		{"absolute source", "/home/trip2023", []string{"/home/trip2023/2023_best/b.jpg", "/home/trip2023/c.jpg", "/home/trip2023/misc/a.jpg"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := &photostat.Options{
				SourcePath:      "/home/trip2023",
				SourceArg:       tc.sourceArg,
				Recursive:       true,
				DirFilter:       "2023",
				ImageExtensions: "jpg",
				Fs:              fs,
			}
			w, err := photostat.NewWalker(opts, testutil.DiscardLogger())
			require.NoError(t, err)

			files, err := w.Collect(context.Background())
			require.NoError(t, err)
			want := make([]string, len(tc.want))
			for i, p := range tc.want {
				want[i] = filepath.FromSlash(p)
			}
			assert.Equal(t, want, files)
		})
	}
}
