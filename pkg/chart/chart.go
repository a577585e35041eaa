// Package chart draws horizontal bar charts as plain ASCII text.
package chart

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	// DefaultWidth is the length of the longest bar when Options.Width is not set.
	DefaultWidth = 40
	// MinWidth is the smallest bar length honoured for the longest bar.
	MinWidth = 10
	// DefaultBarRune draws the bars. It is ASCII so output survives any terminal or pipe.
	DefaultBarRune = '*'
)

// Bar is one labelled value of a chart.
type Bar struct {
	Label string
	Value int
}

// Options controls chart layout.
type Options struct {
	Width      int            // Length of the longest bar; DefaultWidth when <= 0
	BarRune    rune           // DefaultBarRune when zero
	TitleStyle lipgloss.Style // Applied to the title line
}

// BarH writes a horizontal bar chart with one row per bar, in the given order.
// Each row is the left-aligned label, the value in brackets, and a bar whose length is
// proportional to the value. A chart without bars writes nothing.
func BarH(w io.Writer, title string, bars []Bar, opts Options) error {
	if len(bars) == 0 {
		return nil
	}
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}
	if width < MinWidth {
		width = MinWidth
	}
	barRune := opts.BarRune
	if barRune == 0 {
		barRune = DefaultBarRune
	}

	labelWidth, valueWidth, maxValue := 0, 0, 0
	for _, b := range bars {
		if lw := lipgloss.Width(b.Label); lw > labelWidth {
			labelWidth = lw
		}
		if vw := len(strconv.Itoa(b.Value)); vw > valueWidth {
			valueWidth = vw
		}
		if b.Value > maxValue {
			maxValue = b.Value
		}
	}

	var sb strings.Builder
	if title != "" {
		sb.WriteString(opts.TitleStyle.Render(title))
		sb.WriteByte('\n')
	}
	for _, b := range bars {
		sb.WriteString(b.Label)
		sb.WriteString(strings.Repeat(" ", labelWidth-lipgloss.Width(b.Label)))
		fmt.Fprintf(&sb, "  [%*d]  ", valueWidth, b.Value)
		sb.WriteString(strings.Repeat(string(barRune), barLength(b.Value, maxValue, width)))
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// barLength scales value against maxValue onto [0, width], rounding to nearest.
// Any positive value gets at least one cell so it stays visible next to large bars.
func barLength(value, maxValue, width int) int {
	if value <= 0 || maxValue <= 0 {
		return 0
	}
	n := (value*width + maxValue/2) / maxValue
	if n < 1 {
		n = 1
	}
	return n
}
