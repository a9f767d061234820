package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

// fixtureRow builds a full 17-column row. Overrides are keyed by column name.
func fixtureRow(keyword string, overrides map[string]string) []string {
	vals := map[string]string{
		ColKeyword:          keyword,
		ColPosition:         "8",
		ColPreviousPosition: "9",
		ColSearchVolume:     "500",
		ColDifficulty:       "40",
		ColCPC:              "1.25",
		ColURL:              "https://example.com/" + strings.ReplaceAll(keyword, " ", "-"),
		ColTraffic:          "30",
		ColTrafficPct:       "0.5",
		ColTrafficCost:      "37.5",
		ColCompetition:      "0.42",
		ColResultsCount:     "1200000",
		ColTrends:           "0.5,0.7,1.0",
		ColTimestamp:        "2024-09-01",
		ColSERPFeatures:     "Featured snippet, People also ask",
		ColIntents:          "informational",
		ColPositionType:     "Organic",
	}
	for k, v := range overrides {
		vals[k] = v
	}
	row := make([]string, len(RequiredColumns))
	for i, col := range RequiredColumns {
		row[i] = vals[col]
	}
	return row
}

func csvLine(cells []string) string {
	quoted := make([]string, len(cells))
	for i, c := range cells {
		if strings.ContainsAny(c, ",\"") {
			c = `"` + strings.ReplaceAll(c, `"`, `""`) + `"`
		}
		quoted[i] = c
	}
	return strings.Join(quoted, ",") + "\n"
}

func buildCSV(header []string, rows ...[]string) string {
	var sb strings.Builder
	sb.WriteString(csvLine(header))
	for _, r := range rows {
		sb.WriteString(csvLine(r))
	}
	return sb.String()
}

func writeCSVFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeXLSXFile(t *testing.T, sheetName string, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func without(cols []string, drop string) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if c != drop {
			out = append(out, c)
		}
	}
	return out
}
