package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/testlens/internal/config"
	"github.com/verte-zerg/testlens/internal/narrative"
	"github.com/verte-zerg/testlens/internal/report"
	"github.com/verte-zerg/testlens/internal/stats"
	"github.com/verte-zerg/testlens/internal/store"
)

const defaultTrendWindow = 3

var (
	historyStudent   string
	historyDimension string
	historyKey       string
	historySince     string
	historyLast      int
	historyWindow    int
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show saved reports and accuracy over time",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	f := cmd.Flags()
	f.StringVar(&historyStudent, "student", "", "student name filter")
	f.StringVar(&historyDimension, "dimension", string(store.DimensionOverall), "trend view (overall, subject, chapter, difficulty, concept)")
	f.StringVar(&historyKey, "key", "", "group name for a non-overall dimension")
	f.StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	f.IntVar(&historyLast, "last", 0, "limit to last N reports")
	f.IntVar(&historyWindow, "window", defaultTrendWindow, "moving average window")
	f.StringVar(&dbPath, "db", config.DefaultDBPath(), "history database path")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Store.Path)

	dim, err := store.ParseDimension(historyDimension)
	if err != nil {
		return err
	}
	if dim != store.DimensionOverall && strings.TrimSpace(historyKey) == "" {
		return fmt.Errorf("--key is required for the %s dimension", dim)
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if historyWindow < 1 {
		return fmt.Errorf("--window must be >= 1")
	}
	filter := store.ListFilter{Student: historyStudent, Limit: historyLast}
	if historySince != "" {
		since, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since date (expected YYYY-MM-DD)")
		}
		filter.Since = &since
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	metas, err := st.ListReports(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(metas) == 0 {
		_, err := fmt.Fprintln(out, "No saved reports found.")
		return err
	}

	rows := make([][]string, 0, len(metas))
	for _, m := range metas {
		rows = append(rows, []string{
			m.CreatedAt.Local().Format("2006-01-02 15:04"),
			m.ID[:min(8, len(m.ID))],
			m.StudentName,
			m.TestName,
			fmt.Sprintf("%d", m.TotalQuestions),
			narrative.Percent(m.Accuracy),
		})
	}
	for _, line := range report.Table([]string{"Date", "ID", "Student", "Test", "Questions", "Accuracy"}, rows, map[int]bool{4: true, 5: true}) {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}

	points, err := st.GroupHistory(ctx, historyStudent, dim, historyKey)
	if err != nil {
		return fmt.Errorf("failed to load trend: %w", err)
	}
	points = trimPoints(points, filter)
	label := string(dim)
	if dim != store.DimensionOverall {
		label = fmt.Sprintf("%s %q", dim, historyKey)
	}
	if len(points) == 0 {
		_, err := fmt.Fprintf(out, "\nNo data for %s.\n", label)
		return err
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Stats.Accuracy
	}
	avg := stats.MovingAverage(values, historyWindow)
	lines := []string{
		"",
		fmt.Sprintf("Accuracy trend, %s (%d reports, oldest first)", label, len(points)),
		fmt.Sprintf("  accuracy  [%s]  latest %s", stats.Sparkline(values), narrative.Percent(values[len(values)-1])),
		fmt.Sprintf("  avg(%d)    [%s]  latest %s", historyWindow, stats.Sparkline(avg), narrative.Percent(avg[len(avg)-1])),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

// trimPoints applies the since and last filters to trend points.
func trimPoints(points []store.GroupPoint, filter store.ListFilter) []store.GroupPoint {
	if filter.Since != nil {
		kept := points[:0]
		for _, p := range points {
			if !p.CreatedAt.Before(*filter.Since) {
				kept = append(kept, p)
			}
		}
		points = kept
	}
	if filter.Limit > 0 && len(points) > filter.Limit {
		points = points[len(points)-filter.Limit:]
	}
	return points
}
