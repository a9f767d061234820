package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/keyword-gap/internal/config"
	"github.com/sells-group/keyword-gap/internal/ingest"
	"github.com/sells-group/keyword-gap/internal/model"
)

func testConfig() *config.Config {
	return &config.Config{
		Log: config.LogConfig{Level: "info", Format: "json"},
		Thresholds: model.AnalysisConfig{
			MinSearchVolume:      100,
			MaxKeywordDifficulty: 70,
			QuickWinThreshold:    30,
			DefensiveThreshold:   4,
			LongTermThreshold:    70,
			MaxMeasuredPosition:  100,
		},
		Ingest: config.IngestConfig{MaxWarningsLogged: 20},
		AI: config.AIConfig{
			Provider:       config.ProviderAnthropic,
			TimeoutSecs:    5,
			MaxTokens:      500,
			Temperature:    0.2,
			PromptMaxBytes: 8000,
			TopN:           5,
		},
		Output: config.OutputConfig{Dir: ".", Format: "json"},
	}
}

// exportRow builds a 17-column export row with the given ranking figures.
func exportRow(keyword, position, volume, difficulty string) []string {
	vals := map[string]string{
		ingest.ColKeyword:      keyword,
		ingest.ColPosition:     position,
		ingest.ColSearchVolume: volume,
		ingest.ColDifficulty:   difficulty,
		ingest.ColCPC:          "2.10",
		ingest.ColURL:          "https://example.com/" + strings.ReplaceAll(keyword, " ", "-"),
		ingest.ColTraffic:      "40",
		ingest.ColTrafficCost:  "84",
		ingest.ColIntents:      "commercial",
	}
	row := make([]string, len(ingest.RequiredColumns))
	for i, col := range ingest.RequiredColumns {
		row[i] = vals[col]
	}
	return row
}

func writeExport(t *testing.T, dir, name string, header []string, rows ...[]string) string {
	t.Helper()
	lines := []string{strings.Join(header, ",")}
	for _, r := range rows {
		lines = append(lines, strings.Join(r, ","))
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

// writeFixturePair writes a client and competitor export that produce one
// quick win, one steal, and one client win.
func writeFixturePair(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	client := writeExport(t, dir, "client.csv", ingest.RequiredColumns,
		exportRow("CRM Software", "8", "1000", "25"),
		exportRow("acme login", "1", "300", "10"),
	)
	competitor := writeExport(t, dir, "competitor.csv", ingest.RequiredColumns,
		exportRow("crm software", "2", "1000", "25"),
		exportRow("what is a crm", "4", "5400", "55"),
	)
	return client, competitor
}
