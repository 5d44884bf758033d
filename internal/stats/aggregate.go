package stats

import "github.com/verte-zerg/testlens/internal/model"

// OverallKey is the single group key used for the overall view.
const OverallKey = "overall"

// KeyFunc extracts the group key of an outcome. Returning false leaves the
// outcome out of the grouping.
type KeyFunc func(model.QuestionOutcome) (string, bool)

// Key extractors for the summary views.
var (
	ByOverall    KeyFunc = func(model.QuestionOutcome) (string, bool) { return OverallKey, true }
	BySubject    KeyFunc = func(o model.QuestionOutcome) (string, bool) { return o.Subject, true }
	ByChapter    KeyFunc = func(o model.QuestionOutcome) (string, bool) { return o.Chapter, true }
	ByDifficulty KeyFunc = func(o model.QuestionOutcome) (string, bool) { return string(o.Difficulty), true }
	ByConcept    KeyFunc = func(o model.QuestionOutcome) (string, bool) { return o.Concept, o.HasConcept }
)

// runningMean averages without keeping a sum, so large finite inputs never
// overflow to infinity.
type runningMean struct {
	n    int
	mean float64
}

func (m *runningMean) add(x float64) {
	m.n++
	m.mean += (x - m.mean) / float64(m.n)
}

type accumulator struct {
	total     int
	correct   int
	attempted int
	time      runningMean
}

func (a *accumulator) add(o model.QuestionOutcome) {
	a.total++
	if o.IsCorrect {
		a.correct++
	}
	if o.WasAttempted {
		a.attempted++
	}
	a.time.add(o.TimeTakenSeconds)
}

// stats uses the parsed question count as the accuracy denominator, never the
// attempted count.
func (a *accumulator) stats() model.GroupStats {
	return model.GroupStats{
		TotalQuestions:     a.total,
		CorrectCount:       a.correct,
		AttemptedCount:     a.attempted,
		Accuracy:           Ratio(a.correct, a.total),
		AverageTimeSeconds: a.time.mean,
	}
}

// Aggregate groups outcomes by key in a single pass. Groups keep the order in
// which their key first appears.
func Aggregate(outcomes []model.QuestionOutcome, key KeyFunc) model.GroupedStats {
	order := []string{}
	groups := map[string]*accumulator{}
	for _, o := range outcomes {
		k, ok := key(o)
		if !ok {
			continue
		}
		acc, seen := groups[k]
		if !seen {
			acc = &accumulator{}
			groups[k] = acc
			order = append(order, k)
		}
		acc.add(o)
	}
	entries := make([]model.GroupEntry, 0, len(order))
	for _, k := range order {
		entries = append(entries, model.GroupEntry{Key: k, Stats: groups[k].stats()})
	}
	return model.NewGroupedStats(entries)
}

// Overall aggregates every outcome into one group. Empty input yields zero
// stats.
func Overall(outcomes []model.QuestionOutcome) model.GroupStats {
	g, _ := Aggregate(outcomes, ByOverall).Get(OverallKey)
	return g
}
