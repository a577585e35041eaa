// --- START OF NEW FILE internal/testutil/helpers.go ---
package testutil

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// CreateDummyFile writes content to path on fs, ensuring parent directories exist.
// It uses require assertions for test setup.
func CreateDummyFile(t *testing.T, fs afero.Fs, path string, content []byte) {
	t.Helper()
	fullPath := filepath.Clean(path)
	dir := filepath.Dir(fullPath)
	err := fs.MkdirAll(dir, 0755)
	require.NoError(t, err, "Failed to create directory %s for dummy file", dir)
	err = afero.WriteFile(fs, fullPath, content, 0644)
	require.NoError(t, err, "Failed to write dummy file %s", fullPath)
}

// CreateDummyDir ensures a directory exists at the given path on fs.
func CreateDummyDir(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	fullPath := filepath.Clean(path)
	err := fs.MkdirAll(fullPath, 0755)
	require.NoError(t, err, "Failed to create dummy directory %s", fullPath)
}

// CreatePhoto writes a JPEG carrying fixture's EXIF block to path on fs.
func CreatePhoto(t *testing.T, fs afero.Fs, path string, fixture ExifFixture) {
	t.Helper()
	CreateDummyFile(t, fs, path, fixture.JPEG())
}

// CreateOSPhoto writes a JPEG carrying fixture's EXIF block to the real filesystem.
func CreateOSPhoto(t *testing.T, path string, fixture ExifFixture) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, fixture.JPEG(), 0644))
}

// NewTestLogger returns a debug-level text handler writing into a buffer, so tests
// can assert on log output.
func NewTestLogger() (slog.Handler, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}), buf
}

// DiscardLogger returns a handler dropping every record.
func DiscardLogger() slog.Handler {
	return slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError + 4})
}

// --- END OF NEW FILE internal/testutil/helpers.go ---
