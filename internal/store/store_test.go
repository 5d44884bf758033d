package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/testlens/internal/model"
	"github.com/verte-zerg/testlens/internal/stats"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "testlens.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return st
}

func summaryWith(correctAlgebra, correctOptics int) model.PerformanceSummary {
	var outcomes []model.QuestionOutcome
	for i := 0; i < 4; i++ {
		outcomes = append(outcomes, model.QuestionOutcome{
			Subject: "Mathematics", Chapter: "Algebra", Difficulty: model.DifficultyEasy,
			IsCorrect: i < correctAlgebra, WasAttempted: true, TimeTakenSeconds: 30,
		})
	}
	for i := 0; i < 4; i++ {
		outcomes = append(outcomes, model.QuestionOutcome{
			Subject: "Physics", Chapter: "Optics", Difficulty: model.DifficultyHard,
			Concept: "Refraction", HasConcept: true,
			IsCorrect: i < correctOptics, WasAttempted: i < 3, TimeTakenSeconds: 90,
		})
	}
	return stats.Assemble(outcomes, stats.DefaultConfig())
}

func TestSaveAndGetReport(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	score := 42.0

	saved, err := st.SaveReport(ctx, Report{
		Identity:       model.Identity{StudentName: "Asha", TestName: "Mock 1", Score: &score},
		Summary:        summaryWith(3, 1),
		Narrative:      "Keep going.",
		NarrativeError: "",
		SkippedCount:   2,
	})
	if err != nil {
		t.Fatalf("save report: %v", err)
	}
	if saved.ID == "" || saved.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamp, got %+v", saved)
	}

	got, err := st.GetReport(ctx, saved.ID)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if !got.CreatedAt.Equal(saved.CreatedAt) {
		t.Fatalf("created_at mismatch: %v vs %v", got.CreatedAt, saved.CreatedAt)
	}
	if got.Identity.StudentName != "Asha" || got.Identity.Score == nil || *got.Identity.Score != 42 {
		t.Fatalf("unexpected identity: %+v", got.Identity)
	}
	if got.Summary.Overall() != saved.Summary.Overall() {
		t.Fatalf("overall mismatch: %+v vs %+v", got.Summary.Overall(), saved.Summary.Overall())
	}
	if keys := got.Summary.ByChapter().Keys(); len(keys) != 2 || keys[0] != "Algebra" || keys[1] != "Optics" {
		t.Fatalf("unexpected chapter order: %v", keys)
	}
	if got.Narrative != "Keep going." || got.SkippedCount != 2 {
		t.Fatalf("unexpected narrative or skipped: %q %d", got.Narrative, got.SkippedCount)
	}
}

func TestGetReportNotFound(t *testing.T) {
	st := openTestStore(t)
	if _, err := st.GetReport(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListReportsFilters(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, r := range []Report{
		{Identity: model.Identity{StudentName: "Asha", TestName: "Mock 1"}, CreatedAt: base},
		{Identity: model.Identity{StudentName: "Ravi", TestName: "Mock 1"}, CreatedAt: base.Add(time.Hour)},
		{Identity: model.Identity{StudentName: "Asha", TestName: "Mock 2"}, CreatedAt: base.Add(48 * time.Hour)},
	} {
		r.Summary = summaryWith(i+1, i)
		if _, err := st.SaveReport(ctx, r); err != nil {
			t.Fatalf("save report %d: %v", i, err)
		}
	}

	all, err := st.ListReports(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("list reports: %v", err)
	}
	if len(all) != 3 || all[0].TestName != "Mock 2" || all[2].StudentName != "Asha" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	asha, err := st.ListReports(ctx, ListFilter{Student: "Asha"})
	if err != nil {
		t.Fatalf("list by student: %v", err)
	}
	if len(asha) != 2 {
		t.Fatalf("expected 2 reports for Asha, got %d", len(asha))
	}

	since := base.Add(30 * time.Minute)
	recent, err := st.ListReports(ctx, ListFilter{Since: &since, Limit: 1})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 1 || recent[0].TestName != "Mock 2" {
		t.Fatalf("unexpected since/limit result: %+v", recent)
	}
	if recent[0].TotalQuestions != 8 || recent[0].CorrectCount != 5 {
		t.Fatalf("unexpected overall columns: %+v", recent[0])
	}
}

func TestGroupHistory(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := st.SaveReport(ctx, Report{
			Identity:  model.Identity{StudentName: "Asha"},
			CreatedAt: base.Add(time.Duration(i) * 24 * time.Hour),
			Summary:   summaryWith(4, i+1),
		})
		if err != nil {
			t.Fatalf("save report %d: %v", i, err)
		}
	}
	if _, err := st.SaveReport(ctx, Report{
		Identity:  model.Identity{StudentName: "Ravi"},
		CreatedAt: base,
		Summary:   summaryWith(0, 0),
	}); err != nil {
		t.Fatalf("save other student: %v", err)
	}

	points, err := st.GroupHistory(ctx, "Asha", DimensionChapter, "Optics")
	if err != nil {
		t.Fatalf("group history: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	for i, p := range points {
		if p.Stats.CorrectCount != i+1 || p.Stats.TotalQuestions != 4 || p.Stats.AttemptedCount != 3 {
			t.Fatalf("point %d: unexpected stats %+v", i, p.Stats)
		}
	}
	if !points[0].CreatedAt.Before(points[2].CreatedAt) {
		t.Fatalf("expected oldest first")
	}

	overall, err := st.GroupHistory(ctx, "", DimensionOverall, "ignored")
	if err != nil {
		t.Fatalf("overall history: %v", err)
	}
	if len(overall) != 4 {
		t.Fatalf("expected overall rows for every report, got %d", len(overall))
	}

	concept, err := st.GroupHistory(ctx, "Asha", DimensionConcept, "Refraction")
	if err != nil {
		t.Fatalf("concept history: %v", err)
	}
	if len(concept) != 3 {
		t.Fatalf("expected concept rows, got %d", len(concept))
	}
}

func TestParseDimension(t *testing.T) {
	if d, err := ParseDimension(" Chapter "); err != nil || d != DimensionChapter {
		t.Fatalf("ParseDimension = %q, %v", d, err)
	}
	if _, err := ParseDimension("topic"); err == nil {
		t.Fatalf("expected error for unknown dimension")
	}
}
