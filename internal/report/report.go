// Package report renders performance summaries as text, Markdown or JSON
// documents.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/testlens/internal/model"
	"github.com/verte-zerg/testlens/internal/parser"
)

// Format selects the output encoding of a report.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat validates a format name. The empty string selects text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatMarkdown, FormatJSON:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want text, markdown or json)", s)
	}
}

// Document is everything a rendered report shows for one record.
type Document struct {
	Identity          model.Identity
	Summary           model.PerformanceSummary
	Narrative         string
	NarrativeErr      error
	Skipped           []parser.SkippedEntry
	UnknownDifficulty int
}

// Options controls rendering.
type Options struct {
	Format Format
	// Width is the line width for text output. Zero uses the terminal width.
	Width int
	// Color forces ANSI colour in text output even when w is not a terminal.
	Color bool
}

// Render writes doc to w in the requested format.
func Render(w io.Writer, doc Document, opts Options) error {
	switch opts.Format {
	case FormatText, "":
		width := opts.Width
		if width <= 0 {
			width = terminalWidth()
		}
		return renderText(w, doc, width, shouldUseColor(w, opts.Color))
	case FormatMarkdown:
		return renderMarkdown(w, doc)
	case FormatJSON:
		return renderJSON(w, doc)
	default:
		return fmt.Errorf("unknown report format %q", opts.Format)
	}
}

type documentJSON struct {
	Identity          model.Identity           `json:"identity"`
	Summary           model.PerformanceSummary `json:"summary"`
	Narrative         string                   `json:"narrative,omitempty"`
	NarrativeError    string                   `json:"narrative_error,omitempty"`
	Skipped           []parser.SkippedEntry    `json:"skipped"`
	UnknownDifficulty int                      `json:"unknown_difficulty"`
}

func renderJSON(w io.Writer, doc Document) error {
	out := documentJSON{
		Identity:          doc.Identity,
		Summary:           doc.Summary,
		Narrative:         doc.Narrative,
		Skipped:           doc.Skipped,
		UnknownDifficulty: doc.UnknownDifficulty,
	}
	if out.Skipped == nil {
		out.Skipped = []parser.SkippedEntry{}
	}
	if doc.NarrativeErr != nil {
		out.NarrativeError = doc.NarrativeErr.Error()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// view is one grouped section of the report.
type view struct {
	title  string
	groups model.GroupedStats
}

func views(s model.PerformanceSummary) []view {
	out := []view{
		{title: "Subjects", groups: s.BySubject()},
		{title: "Chapters", groups: s.ByChapter()},
		{title: "Difficulty", groups: s.ByDifficulty()},
	}
	if s.ByConcept().Len() > 0 {
		out = append(out, view{title: "Concepts", groups: s.ByConcept()})
	}
	return out
}

var groupHeaders = []string{"Name", "Questions", "Correct", "Attempted", "Accuracy", "Avg time"}

var groupRightAlign = map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}

func groupRows(groups model.GroupedStats) [][]string {
	rows := make([][]string, 0, groups.Len())
	for _, e := range groups.Entries() {
		rows = append(rows, []string{
			e.Key,
			fmt.Sprintf("%d", e.Stats.TotalQuestions),
			fmt.Sprintf("%d", e.Stats.CorrectCount),
			fmt.Sprintf("%d", e.Stats.AttemptedCount),
			percent(e.Stats.Accuracy),
			seconds(e.Stats.AverageTimeSeconds),
		})
	}
	return rows
}

var bucketHeaders = []string{"Time", "Questions", "Correct", "Accuracy"}

var bucketRightAlign = map[int]bool{1: true, 2: true, 3: true}

func bucketRows(buckets []model.TimeBucket) [][]string {
	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, []string{
			b.Label,
			fmt.Sprintf("%d", b.TotalQuestions),
			fmt.Sprintf("%d", b.CorrectCount),
			percent(b.Accuracy),
		})
	}
	return rows
}

func headerLines(id model.Identity) []string {
	var lines []string
	if id.StudentName != "" {
		lines = append(lines, "Student: "+id.StudentName)
	}
	if id.TestName != "" {
		lines = append(lines, "Test: "+id.TestName)
	}
	switch {
	case id.Score != nil && id.TotalMarks != nil:
		lines = append(lines, fmt.Sprintf("Score: %g / %g", *id.Score, *id.TotalMarks))
	case id.Score != nil:
		lines = append(lines, fmt.Sprintf("Score: %g", *id.Score))
	}
	if id.TotalTimeSeconds != nil {
		lines = append(lines, "Total time: "+seconds(*id.TotalTimeSeconds))
	}
	return lines
}

func overallLine(g model.GroupStats) string {
	return fmt.Sprintf("%d/%d correct (%s), %d attempted, %d unattempted, avg %s per question",
		g.CorrectCount, g.TotalQuestions, percent(g.Accuracy), g.AttemptedCount, g.UnattemptedCount(),
		seconds(g.AverageTimeSeconds))
}

func timeAccuracyLine(ta model.TimeAccuracy) string {
	return fmt.Sprintf("Avg time on correct answers: %s, on incorrect answers: %s",
		seconds(ta.AvgCorrectSeconds), seconds(ta.AvgIncorrectSeconds))
}

func dataNotes(doc Document) []string {
	var notes []string
	if len(doc.Skipped) > 0 {
		notes = append(notes, fmt.Sprintf("Skipped entries: %d", len(doc.Skipped)))
		for _, s := range doc.Skipped {
			notes = append(notes, fmt.Sprintf("  #%d: %s", s.Index, s.Reason))
		}
	}
	if doc.UnknownDifficulty > 0 {
		notes = append(notes, fmt.Sprintf("%d questions had an unrecognized difficulty and are listed as %s.",
			doc.UnknownDifficulty, model.DifficultyUnknown))
	}
	return notes
}

// feedback returns the narrative block, or "" when there is none.
func feedback(doc Document) string {
	if doc.NarrativeErr != nil {
		return "Feedback unavailable: " + doc.NarrativeErr.Error()
	}
	return strings.TrimSpace(doc.Narrative)
}

func percent(ratio float64) string {
	return fmt.Sprintf("%.2f%%", ratio*100)
}

func seconds(v float64) string {
	return fmt.Sprintf("%.1fs", v)
}

const noDataMessage = "No question data in this record."
