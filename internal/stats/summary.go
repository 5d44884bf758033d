package stats

import "github.com/verte-zerg/testlens/internal/model"

// Config holds the fixed settings of the aggregation.
type Config struct {
	Buckets model.BucketScheme
}

// DefaultConfig returns the default bucket scheme.
func DefaultConfig() Config {
	return Config{Buckets: model.DefaultBucketScheme()}
}

// Assemble computes every view from the same outcomes and freezes them into
// one summary.
func Assemble(outcomes []model.QuestionOutcome, cfg Config) model.PerformanceSummary {
	return model.NewPerformanceSummary(model.SummaryParts{
		Overall:      Overall(outcomes),
		BySubject:    Aggregate(outcomes, BySubject),
		ByChapter:    Aggregate(outcomes, ByChapter),
		ByDifficulty: Aggregate(outcomes, ByDifficulty),
		ByConcept:    Aggregate(outcomes, ByConcept),
		TimeBuckets:  TimeBuckets(outcomes, cfg.Buckets),
		TimeAccuracy: TimeAccuracyOf(outcomes),
	})
}
