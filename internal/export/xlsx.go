package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/keyword-gap/internal/model"
)

// SummarySheet is the title of the first workbook sheet.
const SummarySheet = "Summary"

// WriteXLSX saves a workbook with a summary sheet and one sheet per
// non-empty category to path.
func WriteXLSX(path string, rows []model.ClassifiedRow, summary model.Summary) error {
	f, err := Workbook(rows, summary)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save xlsx %s", path)
	}
	return nil
}

// Workbook builds the export workbook in memory.
func Workbook(rows []model.ClassifiedRow, summary model.Summary) (*xlsx.File, error) {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet(SummarySheet)
	if err != nil {
		return nil, eris.Wrap(err, "export: add summary sheet")
	}
	writeSummary(sheet, summary)

	for _, c := range Categories {
		subset := Filter(rows, c)
		if len(subset) == 0 {
			continue
		}
		sheet, err := f.AddSheet(c.SheetName())
		if err != nil {
			return nil, eris.Wrapf(err, "export: add sheet %s", c.SheetName())
		}
		writeKeywords(sheet, subset)
	}
	return f, nil
}

func writeKeywords(sheet *xlsx.Sheet, rows []model.ClassifiedRow) {
	header := sheet.AddRow()
	for _, col := range Columns {
		header.AddCell().SetString(col)
	}

	for _, r := range rows {
		flat := flatten(r)
		row := sheet.AddRow()
		row.AddCell().SetString(flat.Keyword)
		intCell(row, r.ClientPosition)
		intCell(row, r.CompetitorPosition)
		if v, ok := r.Volume(); ok {
			row.AddCell().SetInt64(v)
		} else {
			row.AddCell()
		}
		floatCell(row, r.Difficulty)
		floatCell(row, func() (float64, bool) { return cpcOf(r.ComparisonRow) })
		floatCell(row, func() (float64, bool) { return recordCost(r.Client) })
		floatCell(row, func() (float64, bool) { return recordCost(r.Competitor) })
		for _, s := range []string{flat.Intent, flat.FunnelStage, flat.SERPFeatures, flat.ClientURL, flat.CompetitorURL} {
			row.AddCell().SetString(s)
		}
		row.AddCell().SetFloat(r.PriorityScore)
		row.AddCell().SetString(flat.Horizon)
		intCell(row, func() (int, bool) { return positionChange(r.Client) })
		intCell(row, func() (int, bool) { return positionChange(r.Competitor) })
		floatCell(row, func() (float64, bool) { return opportunityScore(r.ComparisonRow) })
		floatCell(row, func() (float64, bool) { return competitiveThreat(r.ComparisonRow) })
	}
}

func writeSummary(sheet *xlsx.Sheet, s model.Summary) {
	labelRow := func(cells ...string) *xlsx.Row {
		row := sheet.AddRow()
		for _, c := range cells {
			row.AddCell().SetString(c)
		}
		return row
	}
	sideRow := func(label string, client, competitor float64) {
		row := labelRow(label)
		row.AddCell().SetFloat(client)
		row.AddCell().SetFloat(competitor)
	}

	labelRow("Metric", "Client", "Competitor")
	sideRow("Total Keywords", float64(s.Client.TotalKeywords), float64(s.Competitor.TotalKeywords))
	sideRow("Ranking Keywords", float64(s.Client.RankingKeywords), float64(s.Competitor.RankingKeywords))
	avg := labelRow("Average Position")
	for _, p := range []*float64{s.Client.AvgPosition, s.Competitor.AvgPosition} {
		if p != nil {
			avg.AddCell().SetFloat(*p)
		} else {
			avg.AddCell()
		}
	}
	sideRow("Total Traffic", s.Client.TotalTraffic, s.Competitor.TotalTraffic)
	sideRow("Total Traffic Cost", s.Client.TotalTrafficCost, s.Competitor.TotalTrafficCost)
	sideRow("Top 3 Keywords", float64(s.Client.Top3), float64(s.Competitor.Top3))
	sideRow("Top 10 Keywords", float64(s.Client.Top10), float64(s.Competitor.Top10))
	sideRow("Keywords 11+", float64(s.Client.Beyond10), float64(s.Competitor.Beyond10))
	sideRow("Data Quality Warnings", float64(s.Client.Warnings), float64(s.Competitor.Warnings))

	sheet.AddRow()
	labelRow("Category", "Keywords", "Traffic Value")
	categoryRow := func(label string, c model.CategoryStats) {
		row := labelRow(label)
		row.AddCell().SetInt(c.Count)
		row.AddCell().SetFloat(c.TrafficValue)
	}
	categoryRow("Quick Wins", s.QuickWins)
	categoryRow("Steal Opportunities", s.Steal)
	categoryRow("Defensive Keywords", s.Defensive)
	categoryRow("Client Wins", s.ClientWins)
	categoryRow("Trending", s.Trending)
	categoryRow("TOFU", s.Funnel.TOFU)
	categoryRow("MOFU", s.Funnel.MOFU)
	categoryRow("BOFU", s.Funnel.BOFU)

	sheet.AddRow()
	totalRow := func(label string, v float64) {
		row := labelRow(label)
		row.AddCell().SetFloat(v)
	}
	totalRow("Merged Keywords", float64(s.MergedKeywords))
	totalRow("Shared Keywords", float64(s.SharedKeywords))
	totalRow("Value At Risk", s.ValueAtRisk)
	totalRow("Opportunity Value", s.OpportunityValue)
	totalRow("Opportunity Volume", float64(s.OpportunityVolume))
	labelRow("Client Market Share", s.MarketShare.String())
	for _, h := range []model.Horizon{model.HorizonImmediate, model.HorizonMedium, model.HorizonLongTerm} {
		totalRow("Horizon: "+string(h), float64(s.Horizons[h]))
	}
}

func intCell(row *xlsx.Row, get func() (int, bool)) {
	cell := row.AddCell()
	if v, ok := get(); ok {
		cell.SetInt(v)
	}
}

func floatCell(row *xlsx.Row, get func() (float64, bool)) {
	cell := row.AddCell()
	if v, ok := get(); ok {
		cell.SetFloat(v)
	}
}

func recordCost(rec *model.KeywordRecord) (float64, bool) {
	if rec == nil || rec.TrafficCost == nil {
		return 0, false
	}
	return *rec.TrafficCost, true
}
