package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/aben20807/exif-count/pkg/chart"
	"github.com/aben20807/exif-count/pkg/photostat"
)

// document is the structured output of a run.
type document struct {
	Summary       photostat.ReportSummary  `json:"summary" yaml:"summary" toml:"summary"`
	Distributions []photostat.Distribution `json:"distributions" yaml:"distributions" toml:"distributions"`
	SkippedFiles  []photostat.SkippedInfo  `json:"skippedFiles" yaml:"skippedFiles" toml:"skippedFiles"`
	LapsedFiles   []string                 `json:"lapsedFiles" yaml:"lapsedFiles" toml:"lapsedFiles"`
}

var titleStyle = lipgloss.NewStyle().Bold(true)

// WriteOutput writes the distributions of report to w in the configured format.
func WriteOutput(w io.Writer, opts photostat.Options, report photostat.Report, logger *slog.Logger) error {
	dists := photostat.Distributions(report.Table, logger)

	switch opts.OutputFormat {
	case photostat.OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newDocument(report, dists))
	case photostat.OutputFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newDocument(report, dists)); err != nil {
			return fmt.Errorf("failed to encode yaml output: %w", err)
		}
		return enc.Close()
	case photostat.OutputFormatTOML:
		if err := toml.NewEncoder(w).Encode(newDocument(report, dists)); err != nil {
			return fmt.Errorf("failed to encode toml output: %w", err)
		}
		return nil
	default:
		return writeCharts(w, report.Table, dists, chartWidth(w, opts.ChartWidth), logger)
	}
}

func newDocument(report photostat.Report, dists []photostat.Distribution) document {
	return document{
		Summary:       report.Summary,
		Distributions: dists,
		SkippedFiles:  report.SkippedFiles,
		LapsedFiles:   report.LapsedFiles,
	}
}

// writeCharts draws one chart per distribution, titled "[Field]".
// Nothing is drawn when no capture date was counted.
func writeCharts(w io.Writer, table photostat.FrequencyTable, dists []photostat.Distribution, width int, logger *slog.Logger) error {
	if !photostat.ShouldRender(table) {
		logger.Info("No photo with complete metadata found, nothing to draw")
		return nil
	}
	opts := chart.Options{Width: width, TitleStyle: titleStyle}
	for i, d := range dists {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		bars := make([]chart.Bar, len(d.Entries))
		for j, e := range d.Entries {
			bars[j] = chart.Bar{Label: e.Label, Value: e.Count}
		}
		if err := chart.BarH(w, "["+d.Field.String()+"]", bars, opts); err != nil {
			return fmt.Errorf("failed to draw %s chart: %w", d.Field, err)
		}
	}
	return nil
}

// chartWidth returns the configured bar width, or half the terminal width when w is a
// terminal, or chart.DefaultWidth.
func chartWidth(w io.Writer, configured int) int {
	if configured > 0 {
		return configured
	}
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			return max(cols/2, chart.MinWidth)
		}
	}
	return chart.DefaultWidth
}
