package report

import (
	"bytes"
	"strings"
	"testing"
)

func TestBarChart(t *testing.T) {
	var buf bytes.Buffer
	err := BarChart(&buf, "Accuracy", []Bar{
		{Label: "A", Ratio: 1},
		{Label: "Bee", Ratio: 0.5},
	}, 0, false)
	if err != nil {
		t.Fatalf("BarChart failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if lines[0] != "Accuracy" {
		t.Fatalf("unexpected title line: %q", lines[0])
	}
	if lines[1] != "A   │ ██████████ 100.00%" {
		t.Fatalf("unexpected full bar: %q", lines[1])
	}
	if lines[2] != "Bee │ █████░░░░░  50.00%" {
		t.Fatalf("unexpected half bar: %q", lines[2])
	}
}

func TestBarChartEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := BarChart(&buf, "Nothing", nil, 80, false); err != nil {
		t.Fatalf("BarChart failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for empty chart, got %q", buf.String())
	}
}

func TestBarChartColorBands(t *testing.T) {
	var buf bytes.Buffer
	t.Setenv("NO_COLOR", "")
	err := BarChart(&buf, "", []Bar{{Label: "hi", Ratio: 0.9}, {Label: "lo", Ratio: 0.2}}, 40, true)
	if err != nil {
		t.Fatalf("BarChart failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, bandStrong.code) || !strings.Contains(out, bandWeak.code) {
		t.Fatalf("expected green and red bars, got %q", out)
	}
	if !strings.Contains(out, colorReset) {
		t.Fatalf("expected colour reset")
	}
}

func TestBandFor(t *testing.T) {
	cases := map[float64]string{1: "green", 0.75: "green", 0.74: "yellow", 0.5: "yellow", 0.49: "red", 0: "red"}
	for ratio, want := range cases {
		if got := BandFor(ratio); got != want {
			t.Fatalf("BandFor(%v) = %q, want %q", ratio, got, want)
		}
	}
}

func TestBarWidthFor(t *testing.T) {
	if got := BarWidthFor(0, 5); got != minBarWidth {
		t.Fatalf("expected min width %d, got %d", minBarWidth, got)
	}
	if got := BarWidthFor(40, 10); got != 40-10-displayWidth(barSeparator)-barPercentWidth {
		t.Fatalf("unexpected width %d", got)
	}
	if got := BarWidthFor(500, 10); got != maxBarWidth {
		t.Fatalf("expected max width %d, got %d", maxBarWidth, got)
	}
	if got := BarWidthFor(15, 10); got != minBarWidth {
		t.Fatalf("expected min width for narrow terminals, got %d", got)
	}
}

func TestShouldUseColorHonorsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if shouldUseColor(&bytes.Buffer{}, true) {
		t.Fatalf("expected NO_COLOR to disable colour")
	}
}
