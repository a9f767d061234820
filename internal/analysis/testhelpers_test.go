package analysis

import "github.com/sells-group/keyword-gap/internal/model"

func ip(v int) *int         { return &v }
func i64(v int64) *int64    { return &v }
func fp(v float64) *float64 { return &v }

func rec(keyword string) *model.KeywordRecord {
	return &model.KeywordRecord{Keyword: keyword}
}

// kw builds a record with the fields the classifier reads most.
func kw(keyword string, pos *int, volume int64, difficulty float64) *model.KeywordRecord {
	r := rec(keyword)
	r.Position = pos
	r.SearchVolume = i64(volume)
	r.Difficulty = fp(difficulty)
	return r
}

func pairRow(client, competitor *model.KeywordRecord) model.ComparisonRow {
	row := model.ComparisonRow{Client: client, Competitor: competitor}
	if client != nil {
		row.Keyword = client.Keyword
	} else if competitor != nil {
		row.Keyword = competitor.Keyword
	}
	return row
}
