package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/testlens/internal/pipeline"
	"github.com/verte-zerg/testlens/internal/report"
	"github.com/verte-zerg/testlens/internal/reportui"
	"github.com/verte-zerg/testlens/internal/store"
)

var (
	viewIndex    int
	viewReportID string
)

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Browse one report in the terminal",
		Long: "Browse one report in the terminal. The report is built from a submission file\n" +
			"(use --index to pick a record from an array) or loaded from history with --id.",
		Args: cobra.MaximumNArgs(1),
		RunE: runViewCmd,
	}
	addPipelineFlags(cmd)
	addBucketFlags(cmd)
	cmd.Flags().IntVar(&viewIndex, "index", 0, "record index within the file")
	cmd.Flags().StringVar(&viewReportID, "id", "", "saved report ID to open instead of a file")
	return cmd
}

func runViewCmd(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if viewReportID != "" {
		if len(args) > 0 {
			return fmt.Errorf("use either a file or --id, not both")
		}
		st, err := store.Open(s.dbPath)
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
		rec, err := st.GetReport(ctx, viewReportID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no saved report with id %q", viewReportID)
			}
			return err
		}
		doc := report.Document{Identity: rec.Identity, Summary: rec.Summary, Narrative: rec.Narrative}
		if rec.NarrativeError != "" {
			doc.NarrativeErr = errors.New(rec.NarrativeError)
		}
		return runViewer(doc)
	}

	jobs := loadJobs(args, cmd.InOrStdin())
	if viewIndex < 0 || viewIndex >= len(jobs) {
		return fmt.Errorf("--index %d out of range (%d records)", viewIndex, len(jobs))
	}

	logger := slog.Default()
	p, _, closeFn, err := buildPipeline(ctx, s, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	out, err := p.Process(ctx, jobs[viewIndex].raw, pipeline.Options{Narrative: s.narrative, Save: s.save})
	if err != nil {
		return err
	}
	return runViewer(out.Document)
}

func runViewer(doc report.Document) error {
	if err := reportui.Run(doc); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
