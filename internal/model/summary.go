package model

import (
	"encoding/json"
	"fmt"
)

// PerformanceSummary is the complete set of aggregate views for one record.
// It is built once and never mutated; accessors return copies.
type PerformanceSummary struct {
	overall      GroupStats
	bySubject    GroupedStats
	byChapter    GroupedStats
	byDifficulty GroupedStats
	byConcept    GroupedStats
	timeBuckets  []TimeBucket
	timeAccuracy TimeAccuracy
}

// SummaryParts are the views a summary is assembled from.
type SummaryParts struct {
	Overall      GroupStats
	BySubject    GroupedStats
	ByChapter    GroupedStats
	ByDifficulty GroupedStats
	ByConcept    GroupedStats
	TimeBuckets  []TimeBucket
	TimeAccuracy TimeAccuracy
}

// NewPerformanceSummary freezes parts into a summary.
func NewPerformanceSummary(p SummaryParts) PerformanceSummary {
	buckets := make([]TimeBucket, len(p.TimeBuckets))
	copy(buckets, p.TimeBuckets)
	return PerformanceSummary{
		overall:      p.Overall,
		bySubject:    p.BySubject,
		byChapter:    p.ByChapter,
		byDifficulty: p.ByDifficulty,
		byConcept:    p.ByConcept,
		timeBuckets:  buckets,
		timeAccuracy: p.TimeAccuracy,
	}
}

// Overall returns the stats over every parsed question.
func (s PerformanceSummary) Overall() GroupStats { return s.overall }

// BySubject returns per-subject stats in first-seen order.
func (s PerformanceSummary) BySubject() GroupedStats { return s.bySubject }

// ByChapter returns per-chapter stats in first-seen order.
func (s PerformanceSummary) ByChapter() GroupedStats { return s.byChapter }

// ByDifficulty returns per-difficulty stats in first-seen order.
func (s PerformanceSummary) ByDifficulty() GroupedStats { return s.byDifficulty }

// ByConcept returns per-concept stats. Only outcomes with a concept count.
func (s PerformanceSummary) ByConcept() GroupedStats { return s.byConcept }

// TimeAccuracy returns average times for correct and incorrect answers.
func (s PerformanceSummary) TimeAccuracy() TimeAccuracy { return s.timeAccuracy }

// TimeBuckets returns a copy of the time-range accuracy buckets.
func (s PerformanceSummary) TimeBuckets() []TimeBucket {
	out := make([]TimeBucket, len(s.timeBuckets))
	copy(out, s.timeBuckets)
	return out
}

// Empty reports whether the summary was built from zero questions.
func (s PerformanceSummary) Empty() bool {
	return s.overall.TotalQuestions == 0
}

type summaryJSON struct {
	Overall      GroupStats   `json:"overall"`
	BySubject    GroupedStats `json:"by_subject"`
	ByChapter    GroupedStats `json:"by_chapter"`
	ByDifficulty GroupedStats `json:"by_difficulty"`
	ByConcept    GroupedStats `json:"by_concept"`
	TimeBuckets  []TimeBucket `json:"time_buckets"`
	TimeAccuracy TimeAccuracy `json:"time_accuracy"`
}

// MarshalJSON implements json.Marshaler.
func (s PerformanceSummary) MarshalJSON() ([]byte, error) {
	buckets := s.timeBuckets
	if buckets == nil {
		buckets = []TimeBucket{}
	}
	return json.Marshal(summaryJSON{
		Overall:      s.overall,
		BySubject:    s.bySubject,
		ByChapter:    s.byChapter,
		ByDifficulty: s.byDifficulty,
		ByConcept:    s.byConcept,
		TimeBuckets:  buckets,
		TimeAccuracy: s.timeAccuracy,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *PerformanceSummary) UnmarshalJSON(data []byte) error {
	var in summaryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("decode summary: %w", err)
	}
	*s = NewPerformanceSummary(SummaryParts(in))
	return nil
}
