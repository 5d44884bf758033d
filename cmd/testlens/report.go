package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/testlens/internal/batch"
	"github.com/verte-zerg/testlens/internal/config"
	"github.com/verte-zerg/testlens/internal/llm"
	"github.com/verte-zerg/testlens/internal/model"
	"github.com/verte-zerg/testlens/internal/narrative"
	"github.com/verte-zerg/testlens/internal/parser"
	"github.com/verte-zerg/testlens/internal/pipeline"
	"github.com/verte-zerg/testlens/internal/report"
	"github.com/verte-zerg/testlens/internal/stats"
	"github.com/verte-zerg/testlens/internal/store"
)

const defaultWorkers = 4

var (
	reportFormat    string
	reportWidth     int
	reportColor     bool
	reportNarrative bool
	reportSave      bool
	reportOutput    string
	batchWorkers    int
	llmProvider     string
	bucketBounds    []float64
	dbPath          string
)

// settings is the merged result of defaults, config file and flags.
type settings struct {
	format    report.Format
	width     int
	color     bool
	narrative bool
	save      bool
	workers   int
	buckets   model.BucketScheme
	llm       llm.Config
	dbPath    string
}

func addRenderFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&reportFormat, "format", string(report.FormatText), "output format (text, markdown, json)")
	f.IntVar(&reportWidth, "width", 0, "line width for text output (0 = terminal width)")
	f.BoolVar(&reportColor, "color", false, "force colour in text output")
	f.StringVarP(&reportOutput, "output", "o", "-", "output file (- for stdout)")
}

func addPipelineFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&reportNarrative, "narrative", true, "generate written feedback with the LLM")
	f.BoolVar(&reportSave, "save", true, "keep the report in the history database")
	f.StringVar(&llmProvider, "provider", "", "LLM provider (gemini, openai, anthropic, mock)")
	f.StringVar(&dbPath, "db", config.DefaultDBPath(), "history database path")
}

func addBucketFlags(cmd *cobra.Command) {
	cmd.Flags().Float64SliceVar(&bucketBounds, "buckets", nil, "time bucket upper bounds in seconds (default 30,60,120)")
}

func resolveSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return settings{}, err
	}
	applyStringConfig(cmd, "format", &reportFormat, fileCfg.Report.Format)
	applyIntConfig(cmd, "width", &reportWidth, fileCfg.Report.Width)
	applyBoolConfig(cmd, "color", &reportColor, fileCfg.Report.Color)
	applyBoolConfig(cmd, "narrative", &reportNarrative, fileCfg.Report.Narrative)
	applyBoolConfig(cmd, "save", &reportSave, fileCfg.Store.Save)
	applyIntConfig(cmd, "workers", &batchWorkers, fileCfg.Batch.Workers)
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Store.Path)
	applyFloatsConfig(cmd, "buckets", &bucketBounds, fileCfg.Buckets.Bounds)

	format, err := report.ParseFormat(reportFormat)
	if err != nil {
		return settings{}, err
	}
	if reportWidth < 0 {
		return settings{}, fmt.Errorf("--width must be >= 0")
	}
	if batchWorkers < 1 {
		return settings{}, fmt.Errorf("--workers must be >= 1")
	}
	scheme, err := config.BucketsConfig{Bounds: bucketBounds}.BucketScheme()
	if err != nil {
		return settings{}, err
	}

	llmCfg := llm.DefaultConfig()
	if err := fileCfg.LLM.Apply(&llmCfg); err != nil {
		return settings{}, err
	}
	llmCfg.ApplyEnv()
	if cmd.Flags().Changed("provider") {
		llmCfg.Provider = llmProvider
	}

	return settings{
		format:    format,
		width:     reportWidth,
		color:     reportColor,
		narrative: reportNarrative,
		save:      reportSave,
		workers:   batchWorkers,
		buckets:   scheme,
		llm:       llmCfg,
		dbPath:    dbPath,
	}, nil
}

// unavailableGenerator reports why no feedback provider could be built.
type unavailableGenerator struct {
	err error
}

func (g unavailableGenerator) Generate(context.Context, narrative.Input) (string, error) {
	return "", g.err
}

// buildPipeline wires the optional stages s asks for. The returned close
// function releases the history database.
func buildPipeline(ctx context.Context, s settings, logger *slog.Logger) (*pipeline.Pipeline, *store.Store, func(), error) {
	p := &pipeline.Pipeline{
		Stats:  stats.Config{Buckets: s.buckets},
		Logger: logger,
	}
	if s.narrative {
		provider, err := llm.NewProvider(ctx, s.llm, logger)
		if err != nil {
			logger.Warn("feedback disabled", "error", err)
			p.Generator = unavailableGenerator{err: err}
		} else {
			p.Generator = narrative.NewLLMGenerator(provider)
		}
	}

	closeFn := func() {}
	var st *store.Store
	if s.save {
		opened, err := store.Open(s.dbPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open db: %w", err)
		}
		st = opened
		p.Saver = st
		closeFn = func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}
	}
	return p, st, closeFn, nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [files...]",
		Short: "Build performance reports from submission files",
		Long: "Build performance reports from submission JSON files. A file holds one record\n" +
			"or an array of records; \"-\" or no argument reads stdin.",
		RunE: runReportCmd,
	}
	addRenderFlags(cmd)
	addPipelineFlags(cmd)
	addBucketFlags(cmd)
	cmd.Flags().IntVar(&batchWorkers, "workers", defaultWorkers, "records processed in parallel")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary [files...]",
		Short: "Print aggregate summaries as JSON without feedback",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveSettings(cmd)
			if err != nil {
				return err
			}
			s.format = report.FormatJSON
			s.narrative = false
			s.save = false
			return processFiles(cmd.Context(), s, args, cmd.InOrStdin())
		},
	}
	f := cmd.Flags()
	f.StringVarP(&reportOutput, "output", "o", "-", "output file (- for stdout)")
	f.IntVar(&batchWorkers, "workers", defaultWorkers, "records processed in parallel")
	addBucketFlags(cmd)
	return cmd
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	return processFiles(cmd.Context(), s, args, cmd.InOrStdin())
}

// job is one raw record and where it came from. err is set when the input
// could not be read or decoded; such a job fails without running.
type job struct {
	source string
	raw    map[string]any
	err    error
}

func processFiles(ctx context.Context, s settings, paths []string, stdin io.Reader) error {
	if ctx == nil {
		ctx = context.Background()
	}
	jobs := loadJobs(paths, stdin)
	logger := slog.Default()
	p, _, closeFn, err := buildPipeline(ctx, s, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	opts := pipeline.Options{Narrative: s.narrative, Save: s.save}
	results := batch.Run(ctx, jobs, s.workers, func(ctx context.Context, _ int, j job) (pipeline.Outcome, error) {
		if j.err != nil {
			return pipeline.Outcome{}, j.err
		}
		return p.Process(ctx, j.raw, opts)
	})

	out, closeOut, err := openOutput(reportOutput)
	if err != nil {
		return err
	}
	defer closeOut()

	var docs []report.Document
	for i, r := range results {
		if r.Err != nil {
			logger.Error("record failed", "source", jobs[i].source, "error", r.Err)
			continue
		}
		if r.Output.ReportID != "" {
			logger.Info("report saved", "source", jobs[i].source, "id", r.Output.ReportID)
		}
		docs = append(docs, r.Output.Document)
	}
	if err := writeDocuments(out, docs, s); err != nil {
		return err
	}

	summary := batch.Summarize(results)
	if summary.Attempted > 1 || summary.Failed > 0 {
		logErrf("Processed %d records: %d succeeded, %d failed\n", summary.Attempted, summary.Succeeded, summary.Failed)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d records failed", summary.Failed, summary.Attempted)
	}
	return nil
}

// loadJobs reads every path into jobs. A file that cannot be read or decoded
// becomes one failed job, and a bad array element fails only itself.
func loadJobs(paths []string, stdin io.Reader) []job {
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	var jobs []job
	for _, path := range paths {
		name := path
		var data []byte
		var err error
		if path == "-" {
			name = "stdin"
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			jobs = append(jobs, job{source: name, err: fmt.Errorf("failed to read %s: %w", path, err)})
			continue
		}
		items, err := parser.Decode(data)
		if err != nil {
			jobs = append(jobs, job{source: name, err: err})
			continue
		}
		for i, item := range items {
			source := name
			if len(items) > 1 {
				source = fmt.Sprintf("%s#%d", name, i)
			}
			jobs = append(jobs, job{source: source, raw: item.Raw, err: item.Err})
		}
	}
	return jobs
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, func() {
		if cerr := f.Close(); cerr != nil {
			logErrf("failed to close output: %v\n", cerr)
		}
	}, nil
}

// writeDocuments renders docs in order. Several JSON documents are written as
// one array.
func writeDocuments(w io.Writer, docs []report.Document, s settings) error {
	opts := report.Options{Format: s.format, Width: s.width, Color: s.color}
	if s.format == report.FormatJSON && len(docs) != 1 {
		items := make([]json.RawMessage, 0, len(docs))
		for _, doc := range docs {
			var buf bytes.Buffer
			if err := report.Render(&buf, doc, opts); err != nil {
				return err
			}
			items = append(items, json.RawMessage(bytes.TrimSpace(buf.Bytes())))
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}
	for i, doc := range docs {
		if i > 0 {
			if _, err := fmt.Fprintln(w, "\n"+strings.Repeat("─", 40)+"\n"); err != nil {
				return err
			}
		}
		if err := report.Render(w, doc, opts); err != nil {
			return err
		}
	}
	return nil
}
