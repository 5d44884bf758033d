package report

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Chapter", "Accuracy", "Correct"}
	rows := [][]string{
		{"Optics", "97.50%", "12"},
		{"光学", "8.00%", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Chapter  Accuracy  Correct" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Optics     97.50%       12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "光学        8.00%        3" {
		t.Fatalf("unexpected wide row line: %q", lines[2])
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if lines := formatTable(nil, nil, nil); lines != nil {
		t.Fatalf("expected nil for empty table, got %v", lines)
	}
}

func TestMarkdownTable(t *testing.T) {
	lines := markdownTable([]string{"Name", "Accuracy"}, [][]string{{"a|b", "50.00%"}}, map[int]bool{1: true})
	want := []string{
		"| Name | Accuracy |",
		"| --- | ---: |",
		`| a\|b | 50.00% |`,
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}
