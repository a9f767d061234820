// Package ingest reads keyword ranking exports, validates their column
// schema, and normalizes rows into typed records.
package ingest

import (
	"fmt"
	"strings"
)

// Required column names, in canonical order.
const (
	ColKeyword          = "Keyword"
	ColPosition         = "Position"
	ColPreviousPosition = "Previous position"
	ColSearchVolume     = "Search Volume"
	ColDifficulty       = "Keyword Difficulty"
	ColCPC              = "CPC"
	ColURL              = "URL"
	ColTraffic          = "Traffic"
	ColTrafficPct       = "Traffic (%)"
	ColTrafficCost      = "Traffic Cost"
	ColCompetition      = "Competition"
	ColResultsCount     = "Number of Results"
	ColTrends           = "Trends"
	ColTimestamp        = "Timestamp"
	ColSERPFeatures     = "SERP Features by Keyword"
	ColIntents          = "Keyword Intents"
	ColPositionType     = "Position Type"
)

// RequiredColumns lists every column an export must carry.
var RequiredColumns = []string{
	ColKeyword,
	ColPosition,
	ColPreviousPosition,
	ColSearchVolume,
	ColDifficulty,
	ColCPC,
	ColURL,
	ColTraffic,
	ColTrafficPct,
	ColTrafficCost,
	ColCompetition,
	ColResultsCount,
	ColTrends,
	ColTimestamp,
	ColSERPFeatures,
	ColIntents,
	ColPositionType,
}

// SchemaError reports required columns that are missing or ambiguous. The
// analysis does not proceed when one is returned.
type SchemaError struct {
	Source    string
	Missing   []string
	Duplicate []string
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Duplicate) > 0 {
		parts = append(parts, fmt.Sprintf("duplicate columns: %s", strings.Join(e.Duplicate, ", ")))
	}
	msg := "ingest: " + strings.Join(parts, "; ")
	if e.Source != "" {
		msg += " (" + e.Source + ")"
	}
	return msg
}

// ColumnIndex maps each required column to its position in a header row.
type ColumnIndex map[string]int

// ValidateSchema checks that every required column appears exactly once in
// header. Names are compared exactly after trimming surrounding whitespace.
func ValidateSchema(header []string) (ColumnIndex, error) {
	seen := make(map[string]int, len(header))
	var dup []string
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, ok := seen[name]; ok {
			if isRequired(name) {
				dup = append(dup, name)
			}
			continue
		}
		seen[name] = i
	}

	idx := make(ColumnIndex, len(RequiredColumns))
	var missing []string
	for _, col := range RequiredColumns {
		i, ok := seen[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		idx[col] = i
	}

	if len(missing) > 0 || len(dup) > 0 {
		return nil, &SchemaError{Missing: missing, Duplicate: dup}
	}
	return idx, nil
}

// Cell returns the trimmed value of col in row, or "" when the row is short.
func (c ColumnIndex) Cell(row []string, col string) string {
	i, ok := c[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isRequired(name string) bool {
	for _, col := range RequiredColumns {
		if col == name {
			return true
		}
	}
	return false
}
