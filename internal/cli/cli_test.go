package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aben20807/exif-count/internal/testutil"
	"github.com/aben20807/exif-count/pkg/chart"
	"github.com/aben20807/exif-count/pkg/photostat"
)

// --- Test Setup ---

func withTerminal(t *testing.T, tty bool) {
	t.Helper()
	orig := isTerminal
	isTerminal = func(*os.File) bool { return tty }
	t.Cleanup(func() { isTerminal = orig })
}

func setupPhotos(t *testing.T) (afero.Fs, string) {
	t.Helper()
	fs := afero.NewMemMapFs()
	src := "/photos"
	testutil.CreatePhoto(t, fs, filepath.Join(src, "a.jpg"), testutil.DefaultFixture())
	second := testutil.DefaultFixture()
	second.DateTimeOriginal = "2023:04:30 09:15:00"
	second.ISO = 100
	testutil.CreatePhoto(t, fs, filepath.Join(src, "b.jpg"), second)
	testutil.CreateDummyFile(t, fs, filepath.Join(src, "plain.jpg"), testutil.PlainJPEG())
	testutil.CreateDummyFile(t, fs, filepath.Join(src, "notes.txt"), []byte("not a photo"))
	return fs, src
}

func newOptions(fs afero.Fs, src string, format photostat.OutputFormat) photostat.Options {
	return photostat.Options{
		SourcePath:      src,
		ImageExtensions: "jpg,jpeg",
		Concurrency:     2,
		TaskTimeout:     5 * time.Second,
		OutputFormat:    format,
		ChartWidth:      10,
		Fs:              fs,
		Logger:          testutil.DiscardLogger(),
	}
}

func runToBuffer(t *testing.T, ctx context.Context, opts photostat.Options) (string, error) {
	t.Helper()
	withTerminal(t, false)
	var out bytes.Buffer
	handler, _ := testutil.NewTestLogger()
	err := Run(ctx, opts, slog.New(handler), &out)
	return out.String(), err
}

// --- Tests ---

func TestRun_TextCharts(t *testing.T) {
	fs, src := setupPhotos(t)

	out, err := runToBuffer(t, context.Background(), newOptions(fs, src, photostat.OutputFormatText))
	require.NoError(t, err)

	assert.Contains(t, out, "[CaptureDate]\n2023-04-30  [1]  **********\n2023-05-01  [1]  **********\n")
	assert.Contains(t, out, "[CameraModel]\nX-T4  [2]  **********\n")
	assert.Contains(t, out, "[ISO]\n100  [1]  **********\n400  [1]  **********\n")
	assert.Contains(t, out, "[ExposureTime]\n1/200  [2]  **********\n")

	var positions []int
	for _, f := range photostat.Fields {
		idx := strings.Index(out, "["+f.String()+"]")
		require.GreaterOrEqual(t, idx, 0, "missing chart for %s", f)
		positions = append(positions, idx)
	}
	assert.IsIncreasing(t, positions)
	assert.Contains(t, out, "**********\n\n[CameraModel]", "charts are separated by a blank line")
}

func TestRun_NothingDrawnWithoutCaptureDates(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutil.CreateDummyFile(t, fs, "/photos/plain.jpg", testutil.PlainJPEG())
	partial := testutil.DefaultFixture()
	partial.Omit = []string{"DateTimeOriginal"}
	testutil.CreatePhoto(t, fs, "/photos/partial.jpg", partial)

	out, err := runToBuffer(t, context.Background(), newOptions(fs, "/photos", photostat.OutputFormatText))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRun_EmptyDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutil.CreateDummyDir(t, fs, "/photos")

	out, err := runToBuffer(t, context.Background(), newOptions(fs, "/photos", photostat.OutputFormatText))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRun_CancelledContextAborts(t *testing.T) {
	fs, src := setupPhotos(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := runToBuffer(t, ctx, newOptions(fs, src, photostat.OutputFormatText))
	require.Error(t, err)
	assert.ErrorIs(t, err, photostat.ErrAborted)
	assert.Empty(t, out, "an aborted run writes no distribution")
}

func TestRun_InvalidOptions(t *testing.T) {
	opts := newOptions(afero.NewMemMapFs(), "", photostat.OutputFormatText)

	_, err := runToBuffer(t, context.Background(), opts)
	assert.ErrorIs(t, err, photostat.ErrConfigValidation)
}

func TestRun_JSONOutput(t *testing.T) {
	fs, src := setupPhotos(t)

	out, err := runToBuffer(t, context.Background(), newOptions(fs, src, photostat.OutputFormatJSON))
	require.NoError(t, err)

	var doc document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 3, doc.Summary.TotalFiles)
	assert.Equal(t, 2, doc.Summary.CountedCount)
	assert.Equal(t, 1, doc.Summary.SkippedCount)
	require.Len(t, doc.SkippedFiles, 1)
	assert.Equal(t, "plain.jpg", doc.SkippedFiles[0].Path)
	assert.Equal(t, photostat.SkipReasonNoMetadata, doc.SkippedFiles[0].Reason)

	require.Len(t, doc.Distributions, len(photostat.Fields))
	dates := doc.Distributions[0]
	assert.Equal(t, photostat.CaptureDate, dates.Field)
	require.Len(t, dates.Entries, 2)
	assert.Equal(t, "2023-04-30", dates.Entries[0].Label)
	assert.Equal(t, 1, dates.Entries[0].Count)
}

func TestWriteOutput_StructuredFormats(t *testing.T) {
	report := photostat.Report{
		Summary: photostat.ReportSummary{SourcePath: "/photos", TotalFiles: 3, CountedCount: 3},
		Table: photostat.FrequencyTable{
			photostat.ExposureTime: {"1/60": 1, "1/1000": 2},
			photostat.ISO:          {"3200": 1, "200": 2},
		},
	}
	logger := slog.New(testutil.DiscardLogger())

	decoders := map[photostat.OutputFormat]func([]byte, *document) error{
		photostat.OutputFormatJSON: func(b []byte, d *document) error { return json.Unmarshal(b, d) },
		photostat.OutputFormatYAML: func(b []byte, d *document) error { return yaml.Unmarshal(b, d) },
		photostat.OutputFormatTOML: func(b []byte, d *document) error { _, err := toml.Decode(string(b), d); return err },
	}

	for format, decode := range decoders {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			opts := photostat.Options{OutputFormat: format}
			require.NoError(t, WriteOutput(&buf, opts, report, logger))

			var doc document
			require.NoError(t, decode(buf.Bytes(), &doc))
			assert.Equal(t, "/photos", doc.Summary.SourcePath)
			assert.Equal(t, 3, doc.Summary.CountedCount)

			require.Len(t, doc.Distributions, 2, "fields without values are omitted")
			exposure := doc.Distributions[0]
			assert.Equal(t, photostat.ExposureTime, exposure.Field)
			require.Len(t, exposure.Entries, 2)
			assert.Equal(t, "1/1000", exposure.Entries[0].Value)
			assert.Equal(t, "1/60", exposure.Entries[1].Value)

			iso := doc.Distributions[1]
			assert.Equal(t, photostat.ISO, iso.Field)
			assert.Equal(t, "200", iso.Entries[0].Value)
			assert.Equal(t, 2, iso.Entries[0].Count)
		})
	}
}

func TestWriteOutput_StructuredWithoutCaptureDate(t *testing.T) {
	var buf bytes.Buffer
	report := photostat.Report{Table: photostat.FrequencyTable{}}

	err := WriteOutput(&buf, photostat.Options{OutputFormat: photostat.OutputFormatJSON}, report, slog.New(testutil.DiscardLogger()))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"summary"`, "structured output is written even when no chart would be drawn")
}

func TestChartWidth(t *testing.T) {
	withTerminal(t, false)
	assert.Equal(t, 25, chartWidth(&bytes.Buffer{}, 25))
	assert.Equal(t, chart.DefaultWidth, chartWidth(&bytes.Buffer{}, 0))
	assert.Equal(t, chart.DefaultWidth, chartWidth(os.Stdout, 0), "non-terminal files use the default width")
}

func TestSelectMode(t *testing.T) {
	testCases := []struct {
		name    string
		tty     bool
		tui     bool
		verbose bool
		want    uiMode
	}{
		{name: "not a terminal", tty: false, tui: true, want: modeLog},
		{name: "verbose on terminal", tty: true, tui: true, verbose: true, want: modeLog},
		{name: "tui on terminal", tty: true, tui: true, want: modeTUI},
		{name: "no tui on terminal", tty: true, tui: false, want: modeProgressBar},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			withTerminal(t, tc.tty)
			got := selectMode(photostat.Options{TuiEnabled: tc.tui, Verbose: tc.verbose})
			assert.Equal(t, tc.want, got)
		})
	}
}

// lapsingOptions returns options whose single photo never finishes extracting.
func lapsingOptions(t *testing.T, handler slog.Handler) photostat.Options {
	t.Helper()
	fs := afero.NewMemMapFs()
	testutil.CreateDummyFile(t, fs, "/photos/slow.jpg", []byte("x"))
	opts := newOptions(fs, "/photos", photostat.OutputFormatText)
	opts.TaskTimeout = 20 * time.Millisecond
	opts.Logger = handler
	opts.Extractor = testutil.FuncExtractor(func(ctx context.Context, path string) (*photostat.FileRecord, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	return opts
}

func TestRun_LapsedFileWarnedOnce(t *testing.T) {
	withTerminal(t, false)
	handler, logBuf := testutil.NewTestLogger()
	var out bytes.Buffer

	err := Run(context.Background(), lapsingOptions(t, handler), slog.New(handler), &out)
	require.NoError(t, err)

	logs := logBuf.String()
	assert.Contains(t, logs, "Task lapsed")
	assert.Equal(t, 1, strings.Count(logs, "level=WARN"), "a lapse produces a single warning:\n%s", logs)
	assert.Contains(t, logs, "lapsed=1")
}

func TestRun_ProgressBarModeSilencesEngineLogs(t *testing.T) {
	withTerminal(t, true)
	handler, logBuf := testutil.NewTestLogger()
	opts := lapsingOptions(t, handler)
	opts.TuiEnabled = false
	var out bytes.Buffer

	err := Run(context.Background(), opts, slog.New(handler), &out)
	require.NoError(t, err)

	logs := logBuf.String()
	assert.NotContains(t, logs, "Starting run")
	assert.NotContains(t, logs, "Task lapsed")
	assert.NotContains(t, logs, "Run finished")
	assert.Contains(t, logs, "Run summary", "the summary is written once the bar is finished")
}

func TestMinLevelHandler(t *testing.T) {
	handler, logBuf := testutil.NewTestLogger()
	logger := slog.New(&minLevelHandler{Handler: handler, min: slog.LevelError}).With(slog.String("component", "engine"))

	logger.Debug("debug line")
	logger.Info("info line")
	logger.WithGroup("task").Warn("warn line")
	assert.Empty(t, logBuf.String())

	logger.Error("error line")
	assert.Contains(t, logBuf.String(), "error line")
	assert.Contains(t, logBuf.String(), "component=engine")
}
