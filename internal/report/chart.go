package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// Bar is one labelled accuracy value in a bar chart.
type Bar struct {
	Label string
	Ratio float64
}

type ansiColor struct {
	name string
	code string
}

const (
	minBarWidth         = 10
	maxBarWidth         = 50
	barSeparator        = " │ "
	barFilled           = "█"
	barEmpty            = "░"
	barPercentWidth     = 8
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

// Accuracy bands: strong at 75% and up, fair at 50% and up.
const (
	strongThreshold = 0.75
	fairThreshold   = 0.5
)

var (
	bandStrong = ansiColor{name: "green", code: "\x1b[32m"}
	bandFair   = ansiColor{name: "yellow", code: "\x1b[33m"}
	bandWeak   = ansiColor{name: "red", code: "\x1b[31m"}
)

// BandFor returns the colour band name for an accuracy ratio.
func BandFor(ratio float64) string {
	return bandColor(ratio).name
}

func bandColor(ratio float64) ansiColor {
	switch {
	case ratio >= strongThreshold:
		return bandStrong
	case ratio >= fairThreshold:
		return bandFair
	default:
		return bandWeak
	}
}

// BarChart renders one horizontal bar per entry, scaled to 0-100%.
func BarChart(w io.Writer, title string, bars []Bar, width int, useColor bool) error {
	if len(bars) == 0 {
		return nil
	}
	labelWidth := 0
	for _, b := range bars {
		labelWidth = max(labelWidth, displayWidth(b.Label))
	}
	barWidth := BarWidthFor(width, labelWidth)

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for _, b := range bars {
		line := padCell(b.Label, labelWidth, false) + barSeparator +
			renderBar(b.Ratio, barWidth, useColor) +
			fmt.Sprintf(" %*s", barPercentWidth-1, percent(b.Ratio))
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func renderBar(ratio float64, width int, useColor bool) string {
	ratio = math.Max(0, math.Min(1, ratio))
	filled := int(math.Round(ratio * float64(width)))
	bar := strings.Repeat(barFilled, filled)
	rest := strings.Repeat(barEmpty, width-filled)
	if useColor && filled > 0 {
		bar = bandColor(ratio).code + bar + colorReset
	}
	return bar + rest
}

// BarWidthFor computes a bar width that fits a line of totalWidth next to a
// label column of labelWidth.
func BarWidthFor(totalWidth, labelWidth int) int {
	if totalWidth <= 0 {
		return minBarWidth
	}
	barWidth := totalWidth - labelWidth - displayWidth(barSeparator) - barPercentWidth
	return max(minBarWidth, min(barWidth, maxBarWidth))
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
