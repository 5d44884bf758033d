// Package narrative turns a performance summary into personalized feedback
// text through an LLM.
package narrative

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/testlens/internal/model"
	"github.com/verte-zerg/testlens/internal/stats"
)

// DefaultStudentName is used when a record carries no student name.
const DefaultStudentName = "Valued Student"

const (
	highlightCount     = 5
	highlightThreshold = 0.6
	strengthCount      = 3
)

// Input is everything the generator needs about one record.
type Input struct {
	Summary  model.PerformanceSummary
	Identity model.Identity
}

// StudentName returns the record's student name or the default.
func (in Input) StudentName() string {
	if name := strings.TrimSpace(in.Identity.StudentName); name != "" {
		return name
	}
	return DefaultStudentName
}

// BuildBriefing renders the summary as a plain-text briefing for the model.
func BuildBriefing(in Input) string {
	s := in.Summary
	var b strings.Builder

	b.WriteString("Student Performance Analysis:\n")
	fmt.Fprintf(&b, "Student Name: %s\n", in.StudentName())
	fmt.Fprintf(&b, "Test Name: %s\n\n", orNA(in.Identity.TestName))

	overall := s.Overall()
	b.WriteString("Overall Summary:\n")
	fmt.Fprintf(&b, "  Score: %s\n", scoreLine(in.Identity))
	fmt.Fprintf(&b, "  Accuracy: %s\n", Percent(overall.Accuracy))
	fmt.Fprintf(&b, "  Correct Answers: %d / %d\n", overall.CorrectCount, overall.TotalQuestions)
	fmt.Fprintf(&b, "  Attempted: %d, Unattempted: %d\n", overall.AttemptedCount, overall.UnattemptedCount())
	if in.Identity.TotalTimeSeconds != nil {
		fmt.Fprintf(&b, "  Total Time Taken: %s\n", FormatDuration(*in.Identity.TotalTimeSeconds))
	}
	b.WriteString("\n")

	writeGroups(&b, "Subject-wise Performance:", "No subject-wise data available.", s.BySubject().Entries())
	writeGroups(&b, "Chapter-wise Performance Highlights (weakest chapters):",
		"No chapter-wise data available.", highlights(s.ByChapter()))
	writeGroups(&b, "Difficulty-wise Performance:", "No difficulty-wise data available.", s.ByDifficulty().Entries())
	writeGroups(&b, "Concept Performance Highlights (weakest concepts):",
		"No concept-wise data available.", highlights(s.ByConcept()))
	writeGroups(&b, "Chapter Strengths (strongest chapters):",
		"No chapter at 60% accuracy or above.", strengths(s.ByChapter()))
	writeGroups(&b, "Concept Strengths (strongest concepts):",
		"No concept at 60% accuracy or above.", strengths(s.ByConcept()))

	b.WriteString("Time Management Insights:\n")
	ta := s.TimeAccuracy()
	fmt.Fprintf(&b, "  Average time per correct question: %s\n", FormatDuration(ta.AvgCorrectSeconds))
	fmt.Fprintf(&b, "  Average time per incorrect question: %s\n", FormatDuration(ta.AvgIncorrectSeconds))
	for _, bucket := range s.TimeBuckets() {
		fmt.Fprintf(&b, "  - %s: %s (%d/%d questions)\n",
			bucket.Label, Percent(bucket.Accuracy), bucket.CorrectCount, bucket.TotalQuestions)
	}
	b.WriteString("\n")

	return b.String()
}

// highlights picks the weakest groups: at least five, plus every group under
// 60% accuracy.
func highlights(groups model.GroupedStats) []model.GroupEntry {
	if below := stats.Below(groups, highlightThreshold); len(below) >= highlightCount {
		return below
	}
	return stats.Weakest(groups, highlightCount)
}

// strengths picks up to three of the most accurate groups at or above 60%.
func strengths(groups model.GroupedStats) []model.GroupEntry {
	out := []model.GroupEntry{}
	for _, e := range stats.Strongest(groups, strengthCount) {
		if e.Stats.Accuracy >= highlightThreshold {
			out = append(out, e)
		}
	}
	return out
}

func writeGroups(b *strings.Builder, title, empty string, entries []model.GroupEntry) {
	b.WriteString(title + "\n")
	if len(entries) == 0 {
		b.WriteString("  " + empty + "\n\n")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(b, "  - %s:\n", e.Key)
		fmt.Fprintf(b, "    Accuracy: %s (%d/%d questions)\n", Percent(e.Stats.Accuracy), e.Stats.CorrectCount, e.Stats.TotalQuestions)
		fmt.Fprintf(b, "    Average Time per Question: %s\n", FormatDuration(e.Stats.AverageTimeSeconds))
	}
	b.WriteString("\n")
}

func scoreLine(id model.Identity) string {
	switch {
	case id.Score != nil && id.TotalMarks != nil:
		return fmt.Sprintf("%g / %g", *id.Score, *id.TotalMarks)
	case id.Score != nil:
		return fmt.Sprintf("%g", *id.Score)
	default:
		return "N/A"
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// Percent formats a 0..1 ratio as a percentage with two decimals.
func Percent(ratio float64) string {
	return fmt.Sprintf("%.2f%%", ratio*100)
}

// FormatDuration renders seconds as "X min Y sec" or "Y sec".
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		return "N/A"
	}
	total := int(seconds)
	minutes, rest := total/60, total%60
	if minutes > 0 {
		return fmt.Sprintf("%d min %d sec", minutes, rest)
	}
	return fmt.Sprintf("%d sec", rest)
}
