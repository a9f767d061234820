package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/keyword-gap/internal/config"
	"github.com/sells-group/keyword-gap/internal/ingest"
	"github.com/sells-group/keyword-gap/internal/model"
)

var validateInsights bool

var validateCmd = &cobra.Command{
	Use:   "validate [FILE...]",
	Short: "Check configuration and ranking exports without running an analysis",
	Long: `Validates the loaded configuration, then reads, schema-checks, and
normalizes each file, printing row counts and data-quality warnings.

Exits non-zero when the configuration is invalid or any file is missing a
required column.

Examples:
  keyword-gap validate client.csv competitor.xlsx
  keyword-gap validate --insights`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		mode := config.ModeAnalyze
		if validateInsights {
			mode = config.ModeInsights
		}
		return runValidate(ctx, cfg, mode, args, cmd.OutOrStdout())
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateInsights, "insights", false, "also require the selected AI provider to be configured")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(ctx context.Context, c *config.Config, mode string, paths []string, out io.Writer) error {
	log := zap.L().With(zap.String("command", "validate"))

	if err := c.Validate(mode); err != nil {
		_, _ = fmt.Fprintf(out, "config: INVALID\n  %v\n", err)
		return err
	}
	_, _ = fmt.Fprintln(out, "config: ok")

	opts := ingest.LoadOptions{
		SheetName:           c.Ingest.SheetName,
		MaxMeasuredPosition: c.Thresholds.MaxMeasuredPosition,
		MaxWarningsLogged:   c.Ingest.MaxWarningsLogged,
	}

	var failed int
	for _, path := range paths {
		ds, err := ingest.LoadFile(ctx, path, model.SideClient, opts)
		if err != nil {
			failed++
			log.Error("validate: file rejected", zap.String("path", path), zap.Error(err))
			if se, ok := ingest.AsSchemaError(err); ok {
				_, _ = fmt.Fprintf(out, "%s: INVALID\n  %s\n", path, se.Error())
				continue
			}
			_, _ = fmt.Fprintf(out, "%s: ERROR\n  %v\n", path, err)
			continue
		}
		printDatasetCheck(out, path, ds, c.Ingest.MaxWarningsLogged)
	}

	if failed > 0 {
		return eris.Errorf("validate: %d of %d files failed", failed, len(paths))
	}
	return nil
}

func printDatasetCheck(out io.Writer, path string, ds *model.Dataset, maxWarnings int) {
	_, _ = fmt.Fprintf(out, "%s: ok (%d rows, %d keywords, %d warnings)\n",
		path, ds.RawRows, len(ds.Records), len(ds.Warnings))

	for i, w := range ds.Warnings {
		if maxWarnings > 0 && i >= maxWarnings {
			_, _ = fmt.Fprintf(out, "  ... %d more\n", len(ds.Warnings)-i)
			break
		}
		_, _ = fmt.Fprintf(out, "  %s\n", w.Error())
	}
}
