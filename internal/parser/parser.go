// Package parser validates raw test-submission records and normalizes them
// into question outcomes.
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/testlens/internal/model"
)

// ErrNoQuestionList is returned for a record that carries neither a
// questions list nor a sections list.
var ErrNoQuestionList = errors.New("record has no question list")

// SkippedEntry describes a question entry that was dropped during parsing.
type SkippedEntry struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Result is the normalized content of one record.
type Result struct {
	Identity          model.Identity          `json:"identity"`
	Outcomes          []model.QuestionOutcome `json:"-"`
	Skipped           []SkippedEntry          `json:"skipped"`
	UnknownDifficulty int                     `json:"unknown_difficulty"`
}

// Item is one element of a decoded document. Err is set when the element
// cannot be a record; the other elements are unaffected.
type Item struct {
	Raw map[string]any
	Err error
}

// Decode splits a JSON document into raw records. An object is a single
// record, an array is a batch. Only a document that is not valid JSON, or is
// neither an object nor an array, fails as a whole.
func Decode(data []byte) ([]Item, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("decode records: empty input")
	}
	var doc any
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	switch v := doc.(type) {
	case map[string]any:
		return []Item{{Raw: v}}, nil
	case []any:
		items := make([]Item, 0, len(v))
		for i, elem := range v {
			record, ok := elem.(map[string]any)
			if !ok {
				items = append(items, Item{Err: fmt.Errorf("element %d is not an object", i)})
				continue
			}
			items = append(items, Item{Raw: record})
		}
		return items, nil
	default:
		return nil, fmt.Errorf("decode records: expected object or array, got %T", doc)
	}
}

// Parsed is the outcome for one element of a document.
type Parsed struct {
	Result
	Err error
}

// Parse decodes data and parses every record in it. A record that cannot be
// parsed carries its own error; the rest are still returned.
func Parse(data []byte) ([]Parsed, error) {
	items, err := Decode(data)
	if err != nil {
		return nil, err
	}
	out := make([]Parsed, len(items))
	for i, item := range items {
		if item.Err != nil {
			out[i].Err = item.Err
			continue
		}
		res, err := ParseRecord(item.Raw)
		if err != nil {
			out[i].Err = fmt.Errorf("record %d: %w", i, err)
			continue
		}
		out[i].Result = res
	}
	return out, nil
}

// ParseRecord normalizes one raw record. Malformed entries are skipped and
// listed in the result; only a missing question list is an error.
func ParseRecord(raw map[string]any) (Result, error) {
	var entries []any
	var identity model.Identity
	if qs, ok := raw["questions"]; ok {
		list, ok := qs.([]any)
		if !ok {
			return Result{}, ErrNoQuestionList
		}
		entries = list
		identity = flatIdentity(raw)
	} else if secs, ok := raw["sections"].([]any); ok {
		entries = flattenSections(secs)
		identity = sectionedIdentity(raw)
	} else {
		return Result{}, ErrNoQuestionList
	}

	res := Result{
		Identity: identity,
		Outcomes: make([]model.QuestionOutcome, 0, len(entries)),
		Skipped:  []SkippedEntry{},
	}
	for i, item := range entries {
		entry, ok := item.(map[string]any)
		if !ok {
			res.Skipped = append(res.Skipped, SkippedEntry{Index: i, Reason: "entry is not an object"})
			continue
		}
		outcome, known, err := parseEntry(entry)
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedEntry{Index: i, Reason: err.Error()})
			continue
		}
		if !known {
			res.UnknownDifficulty++
		}
		res.Outcomes = append(res.Outcomes, outcome)
	}
	return res, nil
}

func parseEntry(entry map[string]any) (model.QuestionOutcome, bool, error) {
	entry = dropNulls(entry)
	if err := validateEntry(entry); err != nil {
		return model.QuestionOutcome{}, false, err
	}

	diff, known := model.ParseDifficulty(entry["difficulty"].(string))
	out := model.QuestionOutcome{
		Subject:      strings.TrimSpace(entry["subject"].(string)),
		Chapter:      strings.TrimSpace(entry["chapter"].(string)),
		Difficulty:   diff,
		IsCorrect:    entry["isCorrect"].(bool),
		WasAttempted: true,
	}
	if secs, ok := number(entry["timeTakenSeconds"]); ok {
		out.TimeTakenSeconds = secs
	}
	if concept, ok := entry["concept"].(string); ok {
		if concept = strings.TrimSpace(concept); concept != "" {
			out.Concept = concept
			out.HasConcept = true
		}
	}
	if attempted, ok := entry["attempted"].(bool); ok {
		out.WasAttempted = attempted
	}
	if out.IsCorrect {
		out.WasAttempted = true
	}
	return out, known, nil
}

func flatIdentity(raw map[string]any) model.Identity {
	id := model.Identity{
		StudentName: stringField(raw, "studentName"),
		TestName:    stringField(raw, "testName"),
	}
	id.Score = numberPtr(raw["score"])
	id.TotalMarks = numberPtr(raw["totalMarks"])
	id.TotalTimeSeconds = numberPtr(raw["totalTimeSeconds"])
	return id
}

func dropNulls(entry map[string]any) map[string]any {
	out := make(map[string]any, len(entry))
	for k, v := range entry {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func numberPtr(v any) *float64 {
	f, ok := number(v)
	if !ok {
		return nil
	}
	return &f
}
