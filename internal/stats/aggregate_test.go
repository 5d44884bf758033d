package stats

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"github.com/verte-zerg/testlens/internal/model"
)

func outcome(subject, chapter string, diff model.Difficulty, correct bool, secs float64) model.QuestionOutcome {
	return model.QuestionOutcome{
		Subject:          subject,
		Chapter:          chapter,
		Difficulty:       diff,
		IsCorrect:        correct,
		WasAttempted:     true,
		TimeTakenSeconds: secs,
	}
}

func algebraGeometry() []model.QuestionOutcome {
	var out []model.QuestionOutcome
	for i := 0; i < 3; i++ {
		out = append(out, outcome("Algebra", "Linear", model.DifficultyEasy, i < 2, 20))
	}
	for i := 0; i < 7; i++ {
		out = append(out, outcome("Geometry", "Circles", model.DifficultyHard, i < 4, 70))
	}
	return out
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-3 {
		t.Fatalf("%s: expected %.4f, got %.4f", name, want, got)
	}
}

func TestAssembleScenario(t *testing.T) {
	summary := Assemble(algebraGeometry(), DefaultConfig())

	overall := summary.Overall()
	if overall.TotalQuestions != 10 || overall.CorrectCount != 6 {
		t.Fatalf("unexpected overall counts: %+v", overall)
	}
	approx(t, "overall accuracy", overall.Accuracy, 0.6)

	algebra, ok := summary.BySubject().Get("Algebra")
	if !ok {
		t.Fatalf("expected Algebra group")
	}
	approx(t, "algebra accuracy", algebra.Accuracy, 0.667)

	geometry, ok := summary.BySubject().Get("Geometry")
	if !ok {
		t.Fatalf("expected Geometry group")
	}
	approx(t, "geometry accuracy", geometry.Accuracy, 0.571)

	if keys := summary.BySubject().Keys(); !reflect.DeepEqual(keys, []string{"Algebra", "Geometry"}) {
		t.Fatalf("unexpected subject order: %v", keys)
	}
	approx(t, "algebra avg time", algebra.AverageTimeSeconds, 20)
	approx(t, "overall avg time", overall.AverageTimeSeconds, 55)
}

func TestAssembleCrossViewTotals(t *testing.T) {
	outcomes := algebraGeometry()
	outcomes = append(outcomes, outcome("Physics", "Optics", model.DifficultyUnknown, false, 200))
	summary := Assemble(outcomes, DefaultConfig())

	total := summary.Overall().TotalQuestions
	if total != len(outcomes) {
		t.Fatalf("expected %d questions, got %d", len(outcomes), total)
	}
	for name, groups := range map[string]model.GroupedStats{
		"subject":    summary.BySubject(),
		"chapter":    summary.ByChapter(),
		"difficulty": summary.ByDifficulty(),
	} {
		if got := groups.TotalQuestions(); got != total {
			t.Fatalf("%s totals %d do not match overall %d", name, got, total)
		}
	}
	bucketTotal := 0
	for _, b := range summary.TimeBuckets() {
		bucketTotal += b.TotalQuestions
	}
	if bucketTotal != total {
		t.Fatalf("bucket totals %d do not match overall %d", bucketTotal, total)
	}
}

func TestAssembleEmpty(t *testing.T) {
	summary := Assemble(nil, DefaultConfig())
	if got := summary.Overall(); got != (model.GroupStats{}) {
		t.Fatalf("expected zero overall stats, got %+v", got)
	}
	if !summary.Empty() {
		t.Fatalf("expected empty summary")
	}
	if summary.BySubject().Len() != 0 {
		t.Fatalf("expected no subject groups")
	}
	buckets := summary.TimeBuckets()
	if len(buckets) != 4 {
		t.Fatalf("expected 4 buckets, got %d", len(buckets))
	}
	for _, b := range buckets {
		if b.TotalQuestions != 0 || b.Accuracy != 0 {
			t.Fatalf("expected empty bucket, got %+v", b)
		}
	}
}

func TestAssembleDeterministic(t *testing.T) {
	outcomes := algebraGeometry()
	a := Assemble(outcomes, DefaultConfig())
	b := Assemble(outcomes, DefaultConfig())
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical summaries")
	}
	if !reflect.DeepEqual(a.ByChapter().Keys(), b.ByChapter().Keys()) {
		t.Fatalf("expected identical chapter order")
	}
}

func TestAggregateIgnoresAttemptedForAccuracy(t *testing.T) {
	outcomes := []model.QuestionOutcome{
		{Subject: "Maths", Chapter: "Sets", Difficulty: model.DifficultyEasy, IsCorrect: true, WasAttempted: true},
		{Subject: "Maths", Chapter: "Sets", Difficulty: model.DifficultyEasy},
		{Subject: "Maths", Chapter: "Sets", Difficulty: model.DifficultyEasy},
		{Subject: "Maths", Chapter: "Sets", Difficulty: model.DifficultyEasy, WasAttempted: true},
	}
	g, _ := Aggregate(outcomes, BySubject).Get("Maths")
	if g.TotalQuestions != 4 || g.CorrectCount != 1 || g.AttemptedCount != 2 {
		t.Fatalf("unexpected counts: %+v", g)
	}
	approx(t, "accuracy", g.Accuracy, 0.25)
	if g.IncorrectCount() != 1 || g.UnattemptedCount() != 2 {
		t.Fatalf("unexpected derived counts: incorrect=%d unattempted=%d", g.IncorrectCount(), g.UnattemptedCount())
	}
}

func TestAggregateConceptSkipsMissing(t *testing.T) {
	withConcept := outcome("Physics", "Optics", model.DifficultyMedium, true, 10)
	withConcept.Concept = "Refraction"
	withConcept.HasConcept = true
	outcomes := []model.QuestionOutcome{withConcept, outcome("Physics", "Optics", model.DifficultyMedium, false, 10)}

	concepts := Aggregate(outcomes, ByConcept)
	if concepts.Len() != 1 {
		t.Fatalf("expected 1 concept group, got %d", concepts.Len())
	}
	g, _ := concepts.Get("Refraction")
	if g.TotalQuestions != 1 || g.Accuracy != 1 {
		t.Fatalf("unexpected concept stats: %+v", g)
	}
}

func TestAccuracyBounds(t *testing.T) {
	for _, o := range [][]model.QuestionOutcome{nil, algebraGeometry()} {
		for _, e := range Aggregate(o, ByChapter).Entries() {
			if e.Stats.Accuracy < 0 || e.Stats.Accuracy > 1 {
				t.Fatalf("accuracy out of range for %s: %v", e.Key, e.Stats.Accuracy)
			}
			if e.Stats.CorrectCount > e.Stats.TotalQuestions {
				t.Fatalf("correct exceeds total for %s", e.Key)
			}
		}
	}
	if Ratio(3, 0) != 0 {
		t.Fatalf("expected zero ratio for zero denominator")
	}
}

func TestAssembleHugeTimesStayFinite(t *testing.T) {
	outcomes := []model.QuestionOutcome{
		outcome("Physics", "Optics", model.DifficultyEasy, true, math.MaxFloat64),
		outcome("Physics", "Optics", model.DifficultyEasy, false, math.MaxFloat64),
	}
	summary := Assemble(outcomes, DefaultConfig())

	overall := summary.Overall()
	if math.IsInf(overall.AverageTimeSeconds, 0) || overall.AverageTimeSeconds != math.MaxFloat64 {
		t.Fatalf("expected finite average, got %v", overall.AverageTimeSeconds)
	}
	ta := summary.TimeAccuracy()
	if ta.AvgCorrectSeconds != math.MaxFloat64 || ta.AvgIncorrectSeconds != math.MaxFloat64 {
		t.Fatalf("unexpected time accuracy: %+v", ta)
	}
	if _, err := json.Marshal(summary); err != nil {
		t.Fatalf("marshal summary: %v", err)
	}
}
