package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/keyword-gap/internal/analysis"
	"github.com/sells-group/keyword-gap/internal/config"
	"github.com/sells-group/keyword-gap/internal/export"
	"github.com/sells-group/keyword-gap/internal/ingest"
	"github.com/sells-group/keyword-gap/internal/insights"
	"github.com/sells-group/keyword-gap/internal/model"
)

// analyzeOptions holds the analyze command's flags.
type analyzeOptions struct {
	ClientPath     string
	CompetitorPath string
	OutDir         string
	Format         string
	Prefix         string
	XLSX           bool
	CSV            []string
	Insights       bool
	Provider       string
	Render         bool
	NoReport       bool
}

var (
	analyzeOpts analyzeOptions

	flagMinVolume         int64
	flagMaxDifficulty     float64
	flagQuickWinThreshold float64
	flagLongTermThreshold float64
	flagDefensive         int
	flagMaxPosition       int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compare a client export against a competitor export",
	Long: `Loads both ranking exports, joins them on the normalized keyword,
classifies every keyword, and writes a report.

Examples:
  # JSON report plus console summary
  keyword-gap analyze --client ours.csv --competitor theirs.csv

  # Workbook and two CSV subsets with a stricter difficulty cap
  keyword-gap analyze --client ours.xlsx --competitor theirs.xlsx \
    --xlsx --csv quick_wins,steal --max-difficulty 50

  # Ask OpenAI for a strategy write-up and render it in the terminal
  keyword-gap analyze --client ours.csv --competitor theirs.csv \
    --insights --provider openai --render`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyThresholdFlags(cmd, &cfg.Thresholds)
		if !cmd.Flags().Changed("out-dir") {
			analyzeOpts.OutDir = cfg.Output.Dir
		}
		if !cmd.Flags().Changed("format") {
			analyzeOpts.Format = cfg.Output.Format
		}
		if analyzeOpts.Provider != "" {
			cfg.AI.Provider = analyzeOpts.Provider
		}

		return runAnalyze(ctx, cfg, analyzeOpts, cmd.OutOrStdout())
	},
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeOpts.ClientPath, "client", "", "client ranking export, CSV or XLSX (required)")
	f.StringVar(&analyzeOpts.CompetitorPath, "competitor", "", "competitor ranking export, CSV or XLSX (required)")
	f.StringVar(&analyzeOpts.OutDir, "out-dir", ".", "directory for written reports")
	f.StringVar(&analyzeOpts.Format, "format", export.FormatJSON, "report format: json or yaml")
	f.StringVar(&analyzeOpts.Prefix, "prefix", "keyword-gap", "file name prefix for written reports")
	f.BoolVar(&analyzeOpts.XLSX, "xlsx", false, "also write an XLSX workbook with one sheet per category")
	f.StringSliceVar(&analyzeOpts.CSV, "csv", nil, "categories to write as CSV (all, quick_wins, steal, defensive, client_wins, tofu, mofu, bofu, trending)")
	f.BoolVar(&analyzeOpts.Insights, "insights", false, "request AI insights for the summary")
	f.StringVar(&analyzeOpts.Provider, "provider", "", "AI provider override: anthropic, openai, or gemini")
	f.BoolVar(&analyzeOpts.Render, "render", false, "render insights as terminal markdown")
	f.BoolVar(&analyzeOpts.NoReport, "no-report", false, "skip the JSON/YAML report file")

	f.Int64Var(&flagMinVolume, "min-volume", 0, "minimum search volume for quick wins and steals")
	f.Float64Var(&flagMaxDifficulty, "max-difficulty", 0, "maximum keyword difficulty for quick wins")
	f.Float64Var(&flagQuickWinThreshold, "quick-win-threshold", 0, "difficulty below which a gap is immediate")
	f.Float64Var(&flagLongTermThreshold, "long-term-threshold", 0, "difficulty at or above which a gap is long term")
	f.IntVar(&flagDefensive, "defensive-threshold", 0, "position gap that marks a keyword as defensive")
	f.IntVar(&flagMaxPosition, "max-position", 0, "deepest position treated as measured")

	_ = analyzeCmd.MarkFlagRequired("client")
	_ = analyzeCmd.MarkFlagRequired("competitor")
	rootCmd.AddCommand(analyzeCmd)
}

// applyThresholdFlags overrides configured thresholds with explicitly set flags.
func applyThresholdFlags(cmd *cobra.Command, t *model.AnalysisConfig) {
	flags := cmd.Flags()
	if flags.Changed("min-volume") {
		t.MinSearchVolume = flagMinVolume
	}
	if flags.Changed("max-difficulty") {
		t.MaxKeywordDifficulty = flagMaxDifficulty
	}
	if flags.Changed("quick-win-threshold") {
		t.QuickWinThreshold = flagQuickWinThreshold
	}
	if flags.Changed("long-term-threshold") {
		t.LongTermThreshold = flagLongTermThreshold
	}
	if flags.Changed("defensive-threshold") {
		t.DefensiveThreshold = flagDefensive
	}
	if flags.Changed("max-position") {
		t.MaxMeasuredPosition = flagMaxPosition
	}
}

func runAnalyze(ctx context.Context, c *config.Config, opts analyzeOptions, out io.Writer) error {
	log := zap.L().With(zap.String("command", "analyze"))

	if err := c.Validate(config.ModeAnalyze); err != nil {
		return err
	}
	format, err := export.ParseFormat(opts.Format)
	if err != nil {
		return err
	}
	categories, err := parseCategories(opts.CSV)
	if err != nil {
		return err
	}
	thresholds := c.Thresholds

	pair, err := ingest.LoadPair(ctx, opts.ClientPath, opts.CompetitorPath, ingest.LoadOptions{
		SheetName:           c.Ingest.SheetName,
		MaxMeasuredPosition: thresholds.MaxMeasuredPosition,
		MaxWarningsLogged:   c.Ingest.MaxWarningsLogged,
	})
	if err != nil {
		return err
	}

	merged := analysis.Merge(pair.Client, pair.Competitor)
	rows, err := analysis.ClassifyAll(merged, thresholds)
	if err != nil {
		return eris.Wrap(err, "analyze: classify")
	}
	summary := analysis.Aggregate(pair.Client, pair.Competitor, rows, c.AI.TopN)
	report := export.NewReport(pair.Client, pair.Competitor, thresholds, summary, rows)

	log.Info("analysis complete",
		zap.String("run_id", report.RunID),
		zap.Int("merged", summary.MergedKeywords),
		zap.Int("quick_wins", summary.QuickWins.Count),
		zap.Int("steal", summary.Steal.Count),
		zap.Int("defensive", summary.Defensive.Count),
	)

	if opts.Insights {
		res := newInsightsService(ctx, c.AI).Generate(ctx, summary)
		report.Insights = &res
	}

	printSummary(out, report)
	if report.Insights != nil {
		printInsights(out, *report.Insights, markdownStyle(opts.Render, c.Output.MarkdownStyle))
	}

	written, err := writeOutputs(report, categories, opts, format)
	if err != nil {
		return err
	}
	for _, path := range written {
		log.Info("wrote output", zap.String("path", path))
	}
	printWritten(out, written)
	return nil
}

func newInsightsService(ctx context.Context, ai config.AIConfig) *insights.Service {
	provider, err := insights.NewProvider(ctx, ai)
	if err != nil {
		zap.L().Warn("insights: provider unavailable", zap.Error(err))
		return insights.Unavailable(err)
	}
	return insights.NewService(provider, insights.Options{
		TopN:     ai.TopN,
		MaxBytes: ai.PromptMaxBytes,
		Timeout:  ai.Timeout(),
	})
}

func parseCategories(names []string) ([]export.Category, error) {
	seen := make(map[export.Category]bool, len(names))
	var out []export.Category
	for _, name := range names {
		c, err := export.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

func writeOutputs(report *export.Report, categories []export.Category, opts analyzeOptions, format string) ([]string, error) {
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "analyze: create output dir %s", opts.OutDir)
	}
	name := func(suffix string) string {
		return filepath.Join(opts.OutDir, opts.Prefix+suffix)
	}

	var written []string
	if !opts.NoReport {
		path := name("-report." + format)
		if err := export.WriteReportFile(path, report, format); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	for _, c := range categories {
		path := name("-" + string(c) + ".csv")
		if err := export.WriteCSVFile(path, report.Rows, c); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if opts.XLSX {
		path := name(".xlsx")
		if err := export.WriteXLSX(path, report.Rows, report.Summary); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
