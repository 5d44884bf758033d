package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/testlens/internal/model"
	"github.com/verte-zerg/testlens/internal/report"
	"github.com/verte-zerg/testlens/internal/stats"
	"github.com/verte-zerg/testlens/internal/store"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadJobsSplitsArrays(t *testing.T) {
	dir := t.TempDir()
	single := filepath.Join(dir, "one.json")
	many := filepath.Join(dir, "many.json")
	writeFile(t, single, `{"questions": []}`)
	writeFile(t, many, `[{"questions": []}, {"sections": []}]`)

	jobs := loadJobs([]string{single, many}, nil)
	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jobs))
	}
	if jobs[0].source != single || jobs[2].source != many+"#1" {
		t.Fatalf("unexpected sources: %q %q", jobs[0].source, jobs[2].source)
	}
	for _, j := range jobs {
		if j.err != nil {
			t.Fatalf("unexpected job error for %s: %v", j.source, j.err)
		}
	}

	stdinJobs := loadJobs(nil, strings.NewReader(`{"questions": []}`))
	if len(stdinJobs) != 1 || stdinJobs[0].source != "stdin" || stdinJobs[0].err != nil {
		t.Fatalf("unexpected stdin jobs: %+v", stdinJobs)
	}
}

func TestLoadJobsKeepsGoodInputs(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	truncated := filepath.Join(dir, "truncated.json")
	mixed := filepath.Join(dir, "mixed.json")
	writeFile(t, good, `{"questions": []}`)
	writeFile(t, truncated, `{"questions": [`)
	writeFile(t, mixed, `[{"questions": []}, 5]`)

	jobs := loadJobs([]string{good, truncated, filepath.Join(dir, "missing.json"), mixed}, nil)
	if len(jobs) != 5 {
		t.Fatalf("expected 5 jobs, got %d", len(jobs))
	}
	var failed []string
	for _, j := range jobs {
		if j.err != nil {
			failed = append(failed, j.source)
		}
	}
	want := []string{truncated, filepath.Join(dir, "missing.json"), mixed + "#1"}
	if strings.Join(failed, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected failed jobs: %v", failed)
	}
	if jobs[0].err != nil || jobs[3].raw == nil {
		t.Fatalf("expected good records to load: %+v", jobs)
	}
}

func TestProcessFilesRendersGoodRecords(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	writeFile(t, good, `{"studentName": "Asha", "questions": [
		{"subject": "Physics", "chapter": "Optics", "difficulty": "Easy", "isCorrect": true, "timeTakenSeconds": 30}
	]}`)
	writeFile(t, bad, `{"questions": [`)

	out := filepath.Join(dir, "out.json")
	prev := reportOutput
	reportOutput = out
	t.Cleanup(func() { reportOutput = prev })

	s := settings{format: report.FormatJSON, workers: 2, buckets: stats.DefaultConfig().Buckets}
	err := processFiles(context.Background(), s, []string{good, bad}, nil)
	if err == nil || !strings.Contains(err.Error(), "1 of 2 records failed") {
		t.Fatalf("expected one failed record, got %v", err)
	}

	data, rerr := os.ReadFile(out)
	if rerr != nil {
		t.Fatalf("read output: %v", rerr)
	}
	var doc struct {
		Identity model.Identity `json:"identity"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("expected one JSON document: %v\n%s", err, data)
	}
	if doc.Identity.StudentName != "Asha" {
		t.Fatalf("expected the good record to render, got %s", data)
	}
}

func TestWriteDocumentsJSONArray(t *testing.T) {
	outcomes := []model.QuestionOutcome{{Subject: "Physics", Chapter: "Optics", Difficulty: model.DifficultyEasy, IsCorrect: true, WasAttempted: true}}
	doc := report.Document{Summary: stats.Assemble(outcomes, stats.DefaultConfig())}

	var buf bytes.Buffer
	if err := writeDocuments(&buf, []report.Document{doc, doc}, settings{format: report.FormatJSON}); err != nil {
		t.Fatalf("write documents: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("expected JSON array: %v\n%s", err, buf.String())
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(decoded))
	}

	buf.Reset()
	if err := writeDocuments(&buf, []report.Document{doc}, settings{format: report.FormatJSON}); err != nil {
		t.Fatalf("write single document: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Fatalf("expected single object, got %s", buf.String())
	}
}

func TestTrimPoints(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var points []store.GroupPoint
	for i := 0; i < 5; i++ {
		points = append(points, store.GroupPoint{CreatedAt: base.AddDate(0, 0, i)})
	}
	since := base.AddDate(0, 0, 1)
	got := trimPoints(points, store.ListFilter{Since: &since, Limit: 2})
	if len(got) != 2 || !got[1].CreatedAt.Equal(base.AddDate(0, 0, 4)) {
		t.Fatalf("unexpected trimmed points: %+v", got)
	}
}
