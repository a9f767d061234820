package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/keyword-gap/internal/config"
	"github.com/sells-group/keyword-gap/internal/export"
	"github.com/sells-group/keyword-gap/internal/ingest"
)

func TestRunAnalyze_WritesOutputs(t *testing.T) {
	client, competitor := writeFixturePair(t)
	outDir := filepath.Join(t.TempDir(), "out")

	var buf bytes.Buffer
	err := runAnalyze(context.Background(), testConfig(), analyzeOptions{
		ClientPath:     client,
		CompetitorPath: competitor,
		OutDir:         outDir,
		Format:         "json",
		Prefix:         "acme",
		XLSX:           true,
		CSV:            []string{"quick-wins", "steal", "quick_wins"},
	}, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Quick wins")
	assert.Contains(t, out, "Top quick wins:")
	assert.Contains(t, out, "crm software")
	assert.Contains(t, out, "Merged keywords: 3 (1 shared)")
	assert.NotContains(t, out, "AI insights")

	reportPath := filepath.Join(outDir, "acme-report.json")
	require.FileExists(t, reportPath)
	assert.FileExists(t, filepath.Join(outDir, "acme-quick_wins.csv"))
	assert.FileExists(t, filepath.Join(outDir, "acme-steal.csv"))
	assert.FileExists(t, filepath.Join(outDir, "acme.xlsx"))

	raw, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report export.Report
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Len(t, report.Rows, 3)
	assert.Equal(t, 1, report.Summary.QuickWins.Count)
	assert.Equal(t, 1, report.Summary.Steal.Count)
	assert.Equal(t, 1, report.Summary.ClientWins.Count)
	assert.Nil(t, report.Insights)

	wb, err := xlsx.OpenFile(filepath.Join(outDir, "acme.xlsx"))
	require.NoError(t, err)
	assert.Contains(t, wb.Sheet, "Quick Wins")
}

func TestRunAnalyze_YAMLWithoutReport(t *testing.T) {
	client, competitor := writeFixturePair(t)
	outDir := t.TempDir()

	err := runAnalyze(context.Background(), testConfig(), analyzeOptions{
		ClientPath: client, CompetitorPath: competitor, OutDir: outDir,
		Format: "yaml", Prefix: "kg", NoReport: true,
	}, &bytes.Buffer{})
	require.NoError(t, err)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunAnalyze_SchemaError(t *testing.T) {
	dir := t.TempDir()
	header := append([]string{}, ingest.RequiredColumns[:len(ingest.RequiredColumns)-1]...)
	client := writeExport(t, dir, "client.csv", header)
	_, competitor := writeFixturePair(t)

	err := runAnalyze(context.Background(), testConfig(), analyzeOptions{
		ClientPath: client, CompetitorPath: competitor, OutDir: dir, Format: "json", Prefix: "kg",
	}, &bytes.Buffer{})
	require.Error(t, err)

	se, ok := ingest.AsSchemaError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, []string{ingest.ColPositionType}, se.Missing)
	assert.NoFileExists(t, filepath.Join(dir, "kg-report.json"))
}

func TestRunAnalyze_HeaderOnlyCompetitorFails(t *testing.T) {
	client, _ := writeFixturePair(t)
	dir := t.TempDir()
	competitor := writeExport(t, dir, "competitor.csv", ingest.RequiredColumns)

	err := runAnalyze(context.Background(), testConfig(), analyzeOptions{
		ClientPath: client, CompetitorPath: competitor, OutDir: dir, Format: "json", Prefix: "kg",
	}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no keyword rows")
	assert.NoFileExists(t, filepath.Join(dir, "kg-report.json"))
}

func TestRunAnalyze_InvalidInputs(t *testing.T) {
	client, competitor := writeFixturePair(t)
	base := analyzeOptions{ClientPath: client, CompetitorPath: competitor, OutDir: t.TempDir(), Format: "json"}

	opts := base
	opts.Format = "xml"
	assert.ErrorContains(t, runAnalyze(context.Background(), testConfig(), opts, &bytes.Buffer{}), "unknown report format")

	opts = base
	opts.CSV = []string{"nonsense"}
	assert.ErrorContains(t, runAnalyze(context.Background(), testConfig(), opts, &bytes.Buffer{}), "unknown category")

	c := testConfig()
	c.Thresholds.QuickWinThreshold = 90
	assert.ErrorContains(t, runAnalyze(context.Background(), c, base, &bytes.Buffer{}), "quick_win_threshold")
}

func TestRunAnalyze_InsightsUnconfigured(t *testing.T) {
	client, competitor := writeFixturePair(t)
	outDir := t.TempDir()

	var buf bytes.Buffer
	err := runAnalyze(context.Background(), testConfig(), analyzeOptions{
		ClientPath: client, CompetitorPath: competitor, OutDir: outDir,
		Format: "json", Prefix: "kg", Insights: true,
	}, &buf)
	require.NoError(t, err, "insights failure never fails the run")
	assert.Contains(t, buf.String(), "AI insights unavailable")

	raw, err := os.ReadFile(filepath.Join(outDir, "kg-report.json"))
	require.NoError(t, err)
	var report export.Report
	require.NoError(t, json.Unmarshal(raw, &report))
	require.NotNil(t, report.Insights)
	assert.False(t, report.Insights.Available)
	assert.Equal(t, "unconfigured", string(report.Insights.Error.Kind))
	assert.Equal(t, 1, report.Summary.QuickWins.Count, "results are intact")
}

func TestRunAnalyze_InsightsOpenAI(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Messages, 2)
		prompt = body.Messages[1].Content

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"Focus on crm software first."},"finish_reason":"stop"}],"usage":{"prompt_tokens":500,"completion_tokens":9,"total_tokens":509}}`))
	}))
	defer srv.Close()

	c := testConfig()
	c.AI.Provider = config.ProviderOpenAI
	c.AI.OpenAI = config.OpenAIConfig{Key: "sk-test", BaseURL: srv.URL, Model: "gpt-4o-mini"}

	client, competitor := writeFixturePair(t)
	var buf bytes.Buffer
	err := runAnalyze(context.Background(), c, analyzeOptions{
		ClientPath: client, CompetitorPath: competitor, OutDir: t.TempDir(),
		Format: "json", Prefix: "kg", Insights: true,
	}, &buf)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "AI insights (openai):")
	assert.Contains(t, buf.String(), "Focus on crm software first.")
	assert.Contains(t, prompt, "crm software")
	assert.NotContains(t, prompt, "https://example.com", "rows never reach the prompt")
}

func TestParseCategories_Dedupes(t *testing.T) {
	got, err := parseCategories([]string{"steal", "Steal", "tofu"})
	require.NoError(t, err)
	assert.Equal(t, []export.Category{export.CategorySteal, export.CategoryTOFU}, got)

	got, err = parseCategories(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
