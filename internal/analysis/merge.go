// Package analysis joins client and competitor keyword datasets, classifies
// each keyword against the analysis thresholds, and aggregates the results.
package analysis

import (
	"sort"

	"github.com/sells-group/keyword-gap/internal/model"
)

// Merge outer-joins two datasets on normalized keyword. Keywords present on
// only one side carry a nil record for the other. Both datasets must already
// be deduplicated; rows are returned sorted by keyword.
func Merge(client, competitor *model.Dataset) []model.ComparisonRow {
	byKeyword := make(map[string]*model.ComparisonRow)

	if client != nil {
		for i := range client.Records {
			rec := &client.Records[i]
			row := lookup(byKeyword, rec.Keyword)
			if row.Client == nil {
				row.Client = rec
			}
		}
	}
	if competitor != nil {
		for i := range competitor.Records {
			rec := &competitor.Records[i]
			row := lookup(byKeyword, rec.Keyword)
			if row.Competitor == nil {
				row.Competitor = rec
			}
		}
	}

	rows := make([]model.ComparisonRow, 0, len(byKeyword))
	for _, row := range byKeyword {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Keyword < rows[j].Keyword })
	return rows
}

func lookup(m map[string]*model.ComparisonRow, keyword string) *model.ComparisonRow {
	row, ok := m[keyword]
	if !ok {
		row = &model.ComparisonRow{Keyword: keyword}
		m[keyword] = row
	}
	return row
}
