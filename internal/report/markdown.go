package report

import (
	"io"
	"strings"
)

func renderMarkdown(w io.Writer, doc Document) error {
	if err := writeLines(w, "# Performance Report", ""); err != nil {
		return err
	}
	if header := headerLines(doc.Identity); len(header) > 0 {
		for _, line := range header {
			if err := writeLines(w, "- "+line); err != nil {
				return err
			}
		}
		if err := writeLines(w, ""); err != nil {
			return err
		}
	}

	s := doc.Summary
	if s.Empty() {
		if err := writeLines(w, "_"+noDataMessage+"_", ""); err != nil {
			return err
		}
	} else {
		if err := writeLines(w, "## Overall", "", overallLine(s.Overall())+".", "", timeAccuracyLine(s.TimeAccuracy())+".", ""); err != nil {
			return err
		}
		for _, v := range views(s) {
			if err := writeLines(w, "## "+v.title, ""); err != nil {
				return err
			}
			if v.groups.Len() == 0 {
				if err := writeLines(w, "_None._", ""); err != nil {
					return err
				}
				continue
			}
			if err := writeLines(w, markdownTable(groupHeaders, groupRows(v.groups), groupRightAlign)...); err != nil {
				return err
			}
			if err := writeLines(w, ""); err != nil {
				return err
			}
		}
		if err := writeLines(w, "## Accuracy by time spent", ""); err != nil {
			return err
		}
		if err := writeLines(w, markdownTable(bucketHeaders, bucketRows(s.TimeBuckets()), bucketRightAlign)...); err != nil {
			return err
		}
		if err := writeLines(w, ""); err != nil {
			return err
		}
	}

	if notes := dataNotes(doc); len(notes) > 0 {
		if err := writeLines(w, "## Data notes", ""); err != nil {
			return err
		}
		for _, n := range notes {
			if err := writeLines(w, "- "+strings.TrimSpace(n)); err != nil {
				return err
			}
		}
		if err := writeLines(w, ""); err != nil {
			return err
		}
	}

	if text := feedback(doc); text != "" {
		if err := writeLines(w, "## Feedback", "", text); err != nil {
			return err
		}
	}
	return nil
}
