package stats

import "github.com/verte-zerg/testlens/internal/model"

// TimeBuckets computes accuracy per time range. Every bucket of the scheme is
// returned, including empty ones, so reports stay comparable.
func TimeBuckets(outcomes []model.QuestionOutcome, scheme model.BucketScheme) []model.TimeBucket {
	accs := make([]accumulator, scheme.Len())
	for _, o := range outcomes {
		accs[scheme.Index(o.TimeTakenSeconds)].add(o)
	}
	out := make([]model.TimeBucket, scheme.Len())
	for i := range accs {
		lower, upper := scheme.Range(i)
		st := accs[i].stats()
		out[i] = model.TimeBucket{
			Label:          scheme.Label(i),
			LowerSeconds:   lower,
			UpperSeconds:   upper,
			TotalQuestions: st.TotalQuestions,
			CorrectCount:   st.CorrectCount,
			Accuracy:       st.Accuracy,
		}
	}
	return out
}

// TimeAccuracyOf averages time over correct and over attempted-but-incorrect
// outcomes. Unattempted outcomes count toward neither.
func TimeAccuracyOf(outcomes []model.QuestionOutcome) model.TimeAccuracy {
	var correct, incorrect runningMean
	for _, o := range outcomes {
		switch {
		case o.IsCorrect:
			correct.add(o.TimeTakenSeconds)
		case o.WasAttempted:
			incorrect.add(o.TimeTakenSeconds)
		}
	}
	return model.TimeAccuracy{
		AvgCorrectSeconds:   correct.mean,
		AvgIncorrectSeconds: incorrect.mean,
	}
}
