package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/retrostats/internal/model"
)

type ansiColor struct {
	name string
	code string
}

const (
	minBarWidth         = 10
	maxBarLabelWidth    = 32
	barSeparator        = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

// Partial cells in eighths, index 0 is empty.
var barEighths = []rune{' ', '▏', '▎', '▍', '▌', '▋', '▊', '▉'}

const barFull = '█'

var colorPalette = []ansiColor{
	{name: "cyan", code: "\x1b[36m"},
	{name: "magenta", code: "\x1b[35m"},
	{name: "yellow", code: "\x1b[33m"},
	{name: "green", code: "\x1b[32m"},
	{name: "blue", code: "\x1b[34m"},
}

// RenderBars prints a horizontal bar chart of entries scaled to the largest
// value of c. A totalWidth of 0 sizes the chart to the terminal.
func RenderBars(w io.Writer, entries []model.Stats, c model.Criterion, limit, totalWidth int, titles TitleFunc, forceColor bool) error {
	entries = Limit(entries, limit)
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	if totalWidth <= 0 {
		totalWidth = terminalWidth()
	}

	labels := make([]string, len(entries))
	values := make([]string, len(entries))
	labelWidth, valueWidth := 0, 0
	maxVal := 0.0
	for i, s := range entries {
		labels[i] = Truncate(fmt.Sprintf("%s (%s)", titleOf(titles, s), s.System), maxBarLabelWidth)
		values[i] = FormatValue(c, s)
		labelWidth = maxInt(labelWidth, displayWidth(labels[i]))
		valueWidth = maxInt(valueWidth, displayWidth(values[i]))
		maxVal = math.Max(maxVal, c.Value(s))
	}
	rankWidth := len(fmt.Sprintf("%d", len(entries)))
	barWidth := BarWidthFor(totalWidth, rankWidth+1+labelWidth, valueWidth)

	useColor := shouldUseColor(w, forceColor)
	if _, err := fmt.Fprintf(w, "Top by %s\n", c.Label()); err != nil {
		return err
	}
	for i, s := range entries {
		bar := renderBar(c.Value(s), maxVal, barWidth)
		if useColor {
			bar = colorPalette[i%len(colorPalette)].code + bar + colorReset
		}
		line := fmt.Sprintf("%*d %s%s%s %s",
			rankWidth, i+1,
			padCell(labels[i], labelWidth, false),
			barSeparator,
			bar,
			values[i],
		)
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

// BarWidthFor computes the bar area that fits next to the label and value columns.
func BarWidthFor(totalWidth, labelWidth, valueWidth int) int {
	if totalWidth <= 0 {
		return minBarWidth
	}
	sepWidth := displayWidth(barSeparator) + 1
	width := totalWidth - labelWidth - valueWidth - sepWidth
	if width < minBarWidth {
		width = minBarWidth
	}
	return width
}

func renderBar(value, maxVal float64, width int) string {
	if width <= 0 || maxVal <= 0 || value <= 0 {
		return strings.Repeat(" ", maxInt(width, 0))
	}
	eighths := int(math.Round(value / maxVal * float64(width*8)))
	if eighths < 1 {
		eighths = 1
	}
	if eighths > width*8 {
		eighths = width * 8
	}
	full := eighths / 8
	rem := eighths % 8
	var b strings.Builder
	b.WriteString(strings.Repeat(string(barFull), full))
	cells := full
	if rem > 0 {
		b.WriteRune(barEighths[rem])
		cells++
	}
	b.WriteString(strings.Repeat(" ", width-cells))
	return b.String()
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
