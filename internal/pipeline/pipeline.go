// Package pipeline turns raw records into rendered report documents.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/verte-zerg/testlens/internal/narrative"
	"github.com/verte-zerg/testlens/internal/parser"
	"github.com/verte-zerg/testlens/internal/report"
	"github.com/verte-zerg/testlens/internal/stats"
	"github.com/verte-zerg/testlens/internal/store"
)

// Saver persists finished reports.
type Saver interface {
	SaveReport(ctx context.Context, r store.Report) (store.Report, error)
}

// Pipeline holds the shared dependencies of record processing. Generator and
// Saver are optional.
type Pipeline struct {
	Stats     stats.Config
	Generator narrative.Generator
	Saver     Saver
	Logger    *slog.Logger
}

// Options selects the optional stages for one record.
type Options struct {
	Narrative bool
	Save      bool
}

// Outcome is the processed form of one record.
type Outcome struct {
	Document report.Document
	ReportID string
}

// Summarize parses raw and assembles its summary without any optional stage.
func (p *Pipeline) Summarize(raw map[string]any) (report.Document, error) {
	res, err := parser.ParseRecord(raw)
	if err != nil {
		return report.Document{}, err
	}
	return report.Document{
		Identity:          res.Identity,
		Summary:           stats.Assemble(res.Outcomes, p.Stats),
		Skipped:           res.Skipped,
		UnknownDifficulty: res.UnknownDifficulty,
	}, nil
}

// Process runs every requested stage for raw. A narrative failure is kept on
// the document; parse and save failures are returned.
func (p *Pipeline) Process(ctx context.Context, raw map[string]any, opts Options) (Outcome, error) {
	doc, err := p.Summarize(raw)
	if err != nil {
		return Outcome{}, err
	}
	logger := p.logger().With("student", doc.Identity.StudentName, "test", doc.Identity.TestName)
	logger.Debug("record summarized",
		"questions", doc.Summary.Overall().TotalQuestions,
		"skipped", len(doc.Skipped),
		"unknown_difficulty", doc.UnknownDifficulty)

	if opts.Narrative && !doc.Summary.Empty() {
		if p.Generator == nil {
			doc.NarrativeErr = errors.New("no feedback generator configured")
		} else {
			text, err := p.Generator.Generate(ctx, narrative.Input{Summary: doc.Summary, Identity: doc.Identity})
			if err != nil {
				logger.Warn("feedback generation failed", "error", err)
				doc.NarrativeErr = err
			} else {
				doc.Narrative = text
			}
		}
	}

	out := Outcome{Document: doc}
	if opts.Save && p.Saver != nil {
		rec := store.Report{
			Identity:     doc.Identity,
			Summary:      doc.Summary,
			Narrative:    doc.Narrative,
			SkippedCount: len(doc.Skipped),
		}
		if doc.NarrativeErr != nil {
			rec.NarrativeError = doc.NarrativeErr.Error()
		}
		saved, err := p.Saver.SaveReport(ctx, rec)
		if err != nil {
			return Outcome{}, fmt.Errorf("save report: %w", err)
		}
		out.ReportID = saved.ID
		logger.Debug("report saved", "id", saved.ID)
	}
	return out, nil
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
