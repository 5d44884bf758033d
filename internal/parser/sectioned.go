package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/verte-zerg/testlens/internal/model"
)

var subjectPatterns = []struct {
	re      *regexp.Regexp
	subject string
}{
	{regexp.MustCompile(`\bphysics\b`), "Physics"},
	{regexp.MustCompile(`\bchemistry\b`), "Chemistry"},
	{regexp.MustCompile(`\bmath(s|ematics)?\b`), "Maths"},
}

// SubjectFromTitle maps a section title onto a subject name.
func SubjectFromTitle(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	if title == "" {
		return "Unknown Subject"
	}
	for _, p := range subjectPatterns {
		if p.re.MatchString(title) {
			return p.subject
		}
	}
	return "Other Subjects"
}

// flattenSections rewrites sectioned questions into flat entries so both
// shapes share one validation path. Non-object questions are passed through
// unchanged and skipped later.
func flattenSections(sections []any) []any {
	var out []any
	for _, item := range sections {
		section, ok := item.(map[string]any)
		if !ok {
			continue
		}
		title := ""
		if sid, ok := section["sectionId"].(map[string]any); ok {
			title, _ = sid["title"].(string)
		}
		subject := SubjectFromTitle(title)
		questions, _ := section["questions"].([]any)
		for _, q := range questions {
			question, ok := q.(map[string]any)
			if !ok {
				out = append(out, q)
				continue
			}
			out = append(out, flattenQuestion(subject, question))
		}
	}
	return out
}

func flattenQuestion(subject string, q map[string]any) map[string]any {
	entry := map[string]any{"subject": subject}
	detail, _ := q["questionId"].(map[string]any)
	if chapter := firstTitle(detail["chapters"]); chapter != "" {
		entry["chapter"] = chapter
	}
	if concept := firstTitle(detail["concepts"]); concept != "" {
		entry["concept"] = concept
	}
	if level, ok := detail["level"]; ok {
		entry["difficulty"] = level
	}
	if t, ok := q["timeTaken"]; ok {
		entry["timeTakenSeconds"] = t
	}

	status, _ := q["status"].(string)
	answered := strings.EqualFold(strings.TrimSpace(status), "answered")
	entry["attempted"] = answered
	entry["isCorrect"] = answered && markedCorrect(q)
	return entry
}

func markedCorrect(q map[string]any) bool {
	if opts, ok := q["markedOptions"].([]any); ok {
		for _, o := range opts {
			if opt, ok := o.(map[string]any); ok && opt["isCorrect"] == true {
				return true
			}
		}
	}
	if input, ok := q["inputValue"].(map[string]any); ok && input["isCorrect"] == true {
		return true
	}
	return false
}

func firstTitle(v any) string {
	list, _ := v.([]any)
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if title, ok := m["title"].(string); ok && strings.TrimSpace(title) != "" {
			return strings.TrimSpace(title)
		}
	}
	return ""
}

func sectionedIdentity(raw map[string]any) model.Identity {
	id := model.Identity{
		StudentName: stringField(raw, "student_name"),
		Score:       numberPtr(raw["totalMarkScored"]),
	}
	id.TotalTimeSeconds = numberPtr(raw["totalTimeTaken"])
	if test, ok := raw["test"].(map[string]any); ok {
		id.TotalMarks = numberPtr(test["totalMarks"])
		id.TestName = stringField(test, "title")
	}
	if id.TestName == "" && id.TotalMarks != nil {
		id.TestName = fmt.Sprintf("Test Analysis (Total Marks: %g)", *id.TotalMarks)
	}
	return id
}
