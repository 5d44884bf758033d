// Package model defines shared data structures.
package model

import "strings"

// Difficulty is the normalized difficulty level of a question.
type Difficulty string

// Difficulty levels. DifficultyUnknown collects unrecognized source values.
const (
	DifficultyEasy    Difficulty = "Easy"
	DifficultyMedium  Difficulty = "Medium"
	DifficultyHard    Difficulty = "Hard"
	DifficultyUnknown Difficulty = "Unknown"
)

// ParseDifficulty maps a source value case-insensitively onto a Difficulty.
// The second return value is false when the value was not recognized and the
// Unknown sentinel was returned instead.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy, true
	case "medium":
		return DifficultyMedium, true
	case "hard":
		return DifficultyHard, true
	default:
		return DifficultyUnknown, false
	}
}

// QuestionOutcome is one graded question in canonical form.
type QuestionOutcome struct {
	Subject          string
	Chapter          string
	Difficulty       Difficulty
	Concept          string
	HasConcept       bool
	IsCorrect        bool
	WasAttempted     bool
	TimeTakenSeconds float64
}

// Identity carries the record fields consumers show next to the numbers.
type Identity struct {
	StudentName      string   `json:"student_name"`
	TestName         string   `json:"test_name"`
	Score            *float64 `json:"score,omitempty"`
	TotalMarks       *float64 `json:"total_marks,omitempty"`
	TotalTimeSeconds *float64 `json:"total_time_seconds,omitempty"`
}

// GroupStats aggregates the outcomes of one group.
type GroupStats struct {
	TotalQuestions     int     `json:"total_questions"`
	CorrectCount       int     `json:"correct_count"`
	AttemptedCount     int     `json:"attempted_count"`
	Accuracy           float64 `json:"accuracy"`
	AverageTimeSeconds float64 `json:"average_time_seconds"`
}

// IncorrectCount returns attempted questions that were not correct.
func (g GroupStats) IncorrectCount() int {
	return g.AttemptedCount - g.CorrectCount
}

// UnattemptedCount returns questions that were never attempted.
func (g GroupStats) UnattemptedCount() int {
	return g.TotalQuestions - g.AttemptedCount
}

// TimeBucket is the accuracy of the outcomes within one time range.
// UpperSeconds is zero for the open-ended last bucket.
type TimeBucket struct {
	Label          string  `json:"label"`
	LowerSeconds   float64 `json:"lower_seconds"`
	UpperSeconds   float64 `json:"upper_seconds,omitempty"`
	TotalQuestions int     `json:"total_questions"`
	CorrectCount   int     `json:"correct_count"`
	Accuracy       float64 `json:"accuracy"`
}

// TimeAccuracy compares time spent on correct and incorrect answers.
type TimeAccuracy struct {
	AvgCorrectSeconds   float64 `json:"avg_correct_seconds"`
	AvgIncorrectSeconds float64 `json:"avg_incorrect_seconds"`
}
