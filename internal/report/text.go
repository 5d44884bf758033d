package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/testlens/internal/model"
)

func writeLines(w io.Writer, lines ...string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func renderText(w io.Writer, doc Document, width int, useColor bool) error {
	title := "Performance Report"
	if err := writeLines(w, title, strings.Repeat("=", displayWidth(title))); err != nil {
		return err
	}
	if err := writeLines(w, headerLines(doc.Identity)...); err != nil {
		return err
	}
	if err := writeLines(w, ""); err != nil {
		return err
	}

	s := doc.Summary
	if s.Empty() {
		if err := writeLines(w, noDataMessage, ""); err != nil {
			return err
		}
	} else {
		if err := writeLines(w, "Overall", "  "+overallLine(s.Overall()), "  "+timeAccuracyLine(s.TimeAccuracy()), ""); err != nil {
			return err
		}
		for _, v := range views(s) {
			if err := renderTextView(w, v, width, useColor); err != nil {
				return err
			}
		}
		if err := renderTextBuckets(w, s.TimeBuckets(), width, useColor); err != nil {
			return err
		}
	}

	if notes := dataNotes(doc); len(notes) > 0 {
		if err := writeLines(w, "Data notes"); err != nil {
			return err
		}
		if err := writeLines(w, notes...); err != nil {
			return err
		}
		if err := writeLines(w, ""); err != nil {
			return err
		}
	}

	if text := feedback(doc); text != "" {
		if err := writeLines(w, "Feedback", strings.Repeat("-", len("Feedback"))); err != nil {
			return err
		}
		if err := writeLines(w, wrapText(text, width)...); err != nil {
			return err
		}
	}
	return nil
}

func renderTextView(w io.Writer, v view, width int, useColor bool) error {
	if err := writeLines(w, v.title); err != nil {
		return err
	}
	if v.groups.Len() == 0 {
		return writeLines(w, "  (none)", "")
	}
	for _, line := range formatTable(groupHeaders, groupRows(v.groups), groupRightAlign) {
		if err := writeLines(w, "  "+line); err != nil {
			return err
		}
	}
	if err := writeLines(w, ""); err != nil {
		return err
	}
	bars := make([]Bar, 0, v.groups.Len())
	for _, e := range v.groups.Entries() {
		bars = append(bars, Bar{Label: e.Key, Ratio: e.Stats.Accuracy})
	}
	if err := BarChart(w, "", bars, width, useColor); err != nil {
		return err
	}
	return writeLines(w, "")
}

func renderTextBuckets(w io.Writer, buckets []model.TimeBucket, width int, useColor bool) error {
	if err := writeLines(w, "Accuracy by time spent"); err != nil {
		return err
	}
	for _, line := range formatTable(bucketHeaders, bucketRows(buckets), bucketRightAlign) {
		if err := writeLines(w, "  "+line); err != nil {
			return err
		}
	}
	if err := writeLines(w, ""); err != nil {
		return err
	}
	bars := make([]Bar, 0, len(buckets))
	for _, b := range buckets {
		bars = append(bars, Bar{Label: b.Label, Ratio: b.Accuracy})
	}
	if err := BarChart(w, "", bars, width, useColor); err != nil {
		return err
	}
	return writeLines(w, "")
}
