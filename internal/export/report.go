package export

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/keyword-gap/internal/insights"
	"github.com/sells-group/keyword-gap/internal/model"
)

// Report formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Source describes one input export.
type Source struct {
	Path     string `json:"path" yaml:"path"`
	RawRows  int    `json:"raw_rows" yaml:"raw_rows"`
	Keywords int    `json:"keywords" yaml:"keywords"`
	Warnings int    `json:"warnings" yaml:"warnings"`
}

// Report is the full result of one analysis run.
type Report struct {
	RunID       string                `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time             `json:"generated_at" yaml:"generated_at"`
	Client      Source                `json:"client" yaml:"client"`
	Competitor  Source                `json:"competitor" yaml:"competitor"`
	Thresholds  model.AnalysisConfig  `json:"thresholds" yaml:"thresholds"`
	Summary     model.Summary         `json:"summary" yaml:"summary"`
	Rows        []model.ClassifiedRow `json:"rows" yaml:"rows"`
	Insights    *insights.Result      `json:"insights,omitempty" yaml:"insights,omitempty"`
}

// NewReport stamps a run ID and generation time on the analysis results.
func NewReport(client, competitor *model.Dataset, cfg model.AnalysisConfig, summary model.Summary, rows []model.ClassifiedRow) *Report {
	if rows == nil {
		rows = []model.ClassifiedRow{}
	}
	return &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Client:      sourceOf(client),
		Competitor:  sourceOf(competitor),
		Thresholds:  cfg,
		Summary:     summary,
		Rows:        rows,
	}
}

func sourceOf(ds *model.Dataset) Source {
	if ds == nil {
		return Source{}
	}
	return Source{Path: ds.Source, RawRows: ds.RawRows, Keywords: len(ds.Records), Warnings: len(ds.Warnings)}
}

// ParseFormat normalizes a report format name.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", eris.Errorf("export: unknown report format %q", s)
}

// WriteReport encodes r to w as indented JSON or YAML.
func WriteReport(w io.Writer, r *Report, format string) error {
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}

	if f == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return eris.Wrap(err, "export: encode yaml report")
		}
		return eris.Wrap(enc.Close(), "export: close yaml encoder")
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return eris.Wrap(err, "export: encode json report")
	}
	return nil
}

// WriteReportFile writes r to path, creating or truncating it.
func WriteReportFile(path string, r *Report, format string) (err error) {
	f, err := os.Create(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = eris.Wrapf(cerr, "export: close %s", path)
		}
	}()
	return WriteReport(f, r, format)
}
