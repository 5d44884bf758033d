package narrative

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an expert academic advisor. You write highly personalized, encouraging and constructive feedback for a student based on their recent test performance. Interpret the data instead of repeating numbers, and frame weaknesses as opportunities for growth.`

const promptTemplate = `The student's name is %[1]s.

Please analyze the following performance data carefully:
--- START OF PERFORMANCE DATA ---
%[2]s
--- END OF PERFORMANCE DATA ---

Based on this data, write a feedback report with the following sections. Use Markdown headings (## for sections, ### for sub-sections).

## 1. Personalized Motivating Introduction
   - Address the student by name (%[1]s).
   - Open with a motivating, human message that picks one specific positive aspect or focus area from the data.

## 2. Detailed Performance Breakdown
   - **Overall Performance:** score, accuracy, and time management.
   - **Subject-wise Analysis:** subjects where %[1]s did well and subjects that need attention, referencing the data.
   - **Chapter-wise Hotspots:** 1-2 strong chapters and 1-2 challenging chapters to revise.
   - **Difficulty Level Insights:** performance across Easy, Medium and Hard questions, including unexpected errors on Easy ones.
   - **Key Conceptual Strengths and Weaknesses:** 1-2 concepts handled well and 1-2 that need work.

## 3. Time Management vs. Accuracy Insights
   - Relate the time %[1]s spent on questions to accuracy, for example time on incorrect versus correct answers.
   - Point out subjects or question types where time management helped or hurt.

## 4. Actionable Suggestions for Improvement (2-3 Key Points)
   - Give 2-3 concrete suggestions tailored to the weaknesses identified above.

Tone: encouraging, empathetic ("I noticed...", "You might find it helpful to..."), specific and data-driven, clear and concise.
Return a single Markdown document. Do not include the START/END OF PERFORMANCE DATA markers.`

// BuildPrompt returns the system and user prompts for a briefing.
func BuildPrompt(briefing, student string) (system, user string) {
	student = strings.TrimSpace(student)
	if student == "" {
		student = DefaultStudentName
	}
	return systemPrompt, fmt.Sprintf(promptTemplate, student, strings.TrimSpace(briefing))
}
