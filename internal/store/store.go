// Package store handles SQLite persistence of generated reports.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/testlens/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a report ID does not exist.
var ErrNotFound = errors.New("report not found")

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Dimension names one grouped view of a summary.
type Dimension string

const (
	DimensionOverall    Dimension = "overall"
	DimensionSubject    Dimension = "subject"
	DimensionChapter    Dimension = "chapter"
	DimensionDifficulty Dimension = "difficulty"
	DimensionConcept    Dimension = "concept"
)

// ParseDimension validates a dimension name.
func ParseDimension(s string) (Dimension, error) {
	switch d := Dimension(strings.ToLower(strings.TrimSpace(s))); d {
	case DimensionOverall, DimensionSubject, DimensionChapter, DimensionDifficulty, DimensionConcept:
		return d, nil
	default:
		return "", fmt.Errorf("unknown dimension %q", s)
	}
}

// Report is one persisted summary with its feedback.
type Report struct {
	ID             string
	CreatedAt      time.Time
	Identity       model.Identity
	Summary        model.PerformanceSummary
	Narrative      string
	NarrativeError string
	SkippedCount   int
}

// ReportMeta is the listing view of a report.
type ReportMeta struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	StudentName    string    `json:"student_name"`
	TestName       string    `json:"test_name"`
	TotalQuestions int       `json:"total_questions"`
	CorrectCount   int       `json:"correct_count"`
	Accuracy       float64   `json:"accuracy"`
}

// ListFilter narrows ListReports. Zero values match everything.
type ListFilter struct {
	Student string
	Since   *time.Time
	Limit   int
}

// GroupPoint is one group's stats in one past report.
type GroupPoint struct {
	ReportID  string
	CreatedAt time.Time
	Stats     model.GroupStats
}

// Store wraps SQLite access for report data.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			student_name TEXT NOT NULL,
			test_name TEXT NOT NULL,
			identity_json TEXT NOT NULL,
			total_questions INTEGER NOT NULL,
			correct_count INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			summary_json TEXT NOT NULL,
			narrative TEXT NOT NULL,
			narrative_error TEXT NOT NULL,
			skipped_count INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS report_groups (
			report_id TEXT NOT NULL,
			dimension TEXT NOT NULL,
			group_key TEXT NOT NULL,
			position INTEGER NOT NULL,
			total_questions INTEGER NOT NULL,
			correct_count INTEGER NOT NULL,
			attempted_count INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			average_time_seconds REAL NOT NULL,
			PRIMARY KEY (report_id, dimension, group_key)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_reports_student_created ON reports(student_name, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_report_groups_key ON report_groups(dimension, group_key);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveReport stores a report and its per-group stats. A missing ID or
// CreatedAt is filled in; the stored report is returned.
func (s *Store) SaveReport(ctx context.Context, r Report) (saved Report, err error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	r.CreatedAt = r.CreatedAt.UTC()

	identityJSON, err := json.Marshal(r.Identity)
	if err != nil {
		return Report{}, fmt.Errorf("encode identity: %w", err)
	}
	summaryJSON, err := json.Marshal(r.Summary)
	if err != nil {
		return Report{}, fmt.Errorf("encode summary: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Report{}, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	overall := r.Summary.Overall()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO reports (id, created_at, student_name, test_name, identity_json, total_questions, correct_count, accuracy, summary_json, narrative, narrative_error, skipped_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.CreatedAt.Format(timeLayout),
		r.Identity.StudentName,
		r.Identity.TestName,
		string(identityJSON),
		overall.TotalQuestions,
		overall.CorrectCount,
		overall.Accuracy,
		string(summaryJSON),
		r.Narrative,
		r.NarrativeError,
		r.SkippedCount,
	)
	if err != nil {
		return Report{}, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO report_groups (report_id, dimension, group_key, position, total_questions, correct_count, attempted_count, accuracy, average_time_seconds)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Report{}, err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, g := range groupRows(r.Summary) {
		if _, err = stmt.ExecContext(ctx, r.ID, string(g.dim), g.entry.Key, g.position,
			g.entry.Stats.TotalQuestions, g.entry.Stats.CorrectCount, g.entry.Stats.AttemptedCount,
			g.entry.Stats.Accuracy, g.entry.Stats.AverageTimeSeconds); err != nil {
			return Report{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return Report{}, err
	}
	return r, nil
}

type groupRow struct {
	dim      Dimension
	position int
	entry    model.GroupEntry
}

func groupRows(s model.PerformanceSummary) []groupRow {
	rows := []groupRow{{
		dim:   DimensionOverall,
		entry: model.GroupEntry{Key: string(DimensionOverall), Stats: s.Overall()},
	}}
	for _, view := range []struct {
		dim    Dimension
		groups model.GroupedStats
	}{
		{DimensionSubject, s.BySubject()},
		{DimensionChapter, s.ByChapter()},
		{DimensionDifficulty, s.ByDifficulty()},
		{DimensionConcept, s.ByConcept()},
	} {
		for i, e := range view.groups.Entries() {
			rows = append(rows, groupRow{dim: view.dim, position: i, entry: e})
		}
	}
	return rows
}

// GetReport loads a report by ID.
func (s *Store) GetReport(ctx context.Context, id string) (Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, identity_json, summary_json, narrative, narrative_error, skipped_count
		 FROM reports WHERE id = ?`, id)

	var r Report
	var createdAt, identityJSON, summaryJSON string
	if err := row.Scan(&r.ID, &createdAt, &identityJSON, &summaryJSON, &r.Narrative, &r.NarrativeError, &r.SkippedCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Report{}, ErrNotFound
		}
		return Report{}, err
	}
	parsed, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return Report{}, err
	}
	r.CreatedAt = parsed
	if err := json.Unmarshal([]byte(identityJSON), &r.Identity); err != nil {
		return Report{}, fmt.Errorf("decode identity: %w", err)
	}
	if err := json.Unmarshal([]byte(summaryJSON), &r.Summary); err != nil {
		return Report{}, fmt.Errorf("decode summary: %w", err)
	}
	return r, nil
}

// ListReports returns report metadata, newest first.
func (s *Store) ListReports(ctx context.Context, filter ListFilter) ([]ReportMeta, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Student != "" {
		clauses = append(clauses, "student_name = ?")
		args = append(args, filter.Student)
	}
	if filter.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, created_at, student_name, test_name, total_questions, correct_count, accuracy
		FROM reports
		WHERE %s
		ORDER BY created_at DESC, rowid DESC`, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	metas := []ReportMeta{}
	for rows.Next() {
		var m ReportMeta
		var createdAt string
		if err := rows.Scan(&m.ID, &createdAt, &m.StudentName, &m.TestName, &m.TotalQuestions, &m.CorrectCount, &m.Accuracy); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, err
		}
		m.CreatedAt = parsed
		metas = append(metas, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return metas, nil
}

// GroupHistory returns one group's stats across a student's reports, oldest
// first. An empty student matches every report.
func (s *Store) GroupHistory(ctx context.Context, student string, dim Dimension, key string) ([]GroupPoint, error) {
	if dim == DimensionOverall {
		key = string(DimensionOverall)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.created_at, g.total_questions, g.correct_count, g.attempted_count, g.accuracy, g.average_time_seconds
		 FROM report_groups g
		 JOIN reports r ON r.id = g.report_id
		 WHERE g.dimension = ? AND g.group_key = ? AND (? = '' OR r.student_name = ?)
		 ORDER BY r.created_at ASC, r.rowid ASC`,
		string(dim), key, student, student)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var points []GroupPoint
	for rows.Next() {
		var p GroupPoint
		var createdAt string
		if err := rows.Scan(&p.ReportID, &createdAt, &p.Stats.TotalQuestions, &p.Stats.CorrectCount,
			&p.Stats.AttemptedCount, &p.Stats.Accuracy, &p.Stats.AverageTimeSeconds); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, err
		}
		p.CreatedAt = parsed
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return points, nil
}
