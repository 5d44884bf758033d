package reportui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/testlens/internal/model"
	"github.com/verte-zerg/testlens/internal/report"
	"github.com/verte-zerg/testlens/internal/stats"
)

func sampleDoc() report.Document {
	outcomes := []model.QuestionOutcome{
		{Subject: "Physics", Chapter: "Optics", Difficulty: model.DifficultyEasy, IsCorrect: true, WasAttempted: true, TimeTakenSeconds: 20},
		{Subject: "Physics", Chapter: "Optics", Difficulty: model.DifficultyHard, IsCorrect: true, WasAttempted: true, TimeTakenSeconds: 70},
		{Subject: "Chemistry", Chapter: "Bonding", Difficulty: model.DifficultyMedium, IsCorrect: false, WasAttempted: true, TimeTakenSeconds: 130},
	}
	return report.Document{
		Identity:  model.Identity{StudentName: "Asha", TestName: "Mock 1"},
		Summary:   stats.Assemble(outcomes, stats.DefaultConfig()),
		Narrative: "Good progress in Physics.",
	}
}

func sized(t *testing.T, m *Model) *Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(*Model)
}

func tabTitles(m *Model) []string {
	out := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		out[i] = t.title
	}
	return out
}

func TestTabsWithoutConcepts(t *testing.T) {
	m := NewModel(sampleDoc())
	got := strings.Join(tabTitles(m), ",")
	if got != "Overview,Subjects,Chapters,Difficulty,Time,Feedback" {
		t.Fatalf("unexpected tabs: %s", got)
	}
}

func TestViewRendersOverview(t *testing.T) {
	m := sized(t, NewModel(sampleDoc()))
	view := m.View()
	for _, want := range []string{"Overview", "Student: Asha", "Questions", "66.67%"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
	if lines := strings.Split(view, "\n"); len(lines) != 30 {
		t.Fatalf("expected view to fill 30 lines, got %d", len(lines))
	}
}

func TestNavigationAndSort(t *testing.T) {
	m := sized(t, NewModel(sampleDoc()))
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.currentTab().title != "Subjects" {
		t.Fatalf("expected Subjects tab, got %s", m.currentTab().title)
	}
	rows := m.groupTable.Rows()
	if len(rows) != 2 || rows[0][0] != "Physics" {
		t.Fatalf("expected record order rows, got %v", rows)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	rows = m.groupTable.Rows()
	if rows[0][0] != "Chemistry" || rows[0][4] != "0.00%" {
		t.Fatalf("expected weakest first, got %v", rows)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.currentTab().title != "Feedback" {
		t.Fatalf("expected wrap to Feedback, got %s", m.currentTab().title)
	}
	if !strings.Contains(m.View(), "Good progress in Physics.") {
		t.Fatalf("expected narrative in feedback tab")
	}
}

func TestFeedbackError(t *testing.T) {
	doc := sampleDoc()
	doc.NarrativeErr = errors.New("rate limited")
	out := renderFeedback(doc, 80)
	if !strings.Contains(out, "Feedback unavailable: rate limited") {
		t.Fatalf("unexpected feedback: %q", out)
	}
}

func TestEmptySummary(t *testing.T) {
	m := sized(t, NewModel(report.Document{Summary: stats.Assemble(nil, stats.DefaultConfig())}))
	if !strings.Contains(m.View(), "No question data") {
		t.Fatalf("expected no-data message")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if !strings.Contains(m.View(), "No groups in this view.") {
		t.Fatalf("expected empty table message")
	}
}

func TestQuit(t *testing.T) {
	m := NewModel(sampleDoc())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestFitLines(t *testing.T) {
	out := fitLines("a\nb\nc", 3, 2)
	if out != "a  \nb  " {
		t.Fatalf("unexpected fit: %q", out)
	}
}
