package export

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/keyword-gap/internal/model"
)

// keywordRow is the flat export shape of a ClassifiedRow. Absent values are
// empty strings so they encode as empty cells.
type keywordRow struct {
	Keyword               string `csv:"Keyword"`
	ClientPosition        string `csv:"Client Position"`
	CompetitorPosition    string `csv:"Competitor Position"`
	SearchVolume          string `csv:"Search Volume"`
	Difficulty            string `csv:"Difficulty"`
	CPC                   string `csv:"CPC"`
	ClientTrafficCost     string `csv:"Client Traffic Cost"`
	CompetitorTrafficCost string `csv:"Competitor Traffic Cost"`
	Intent                string `csv:"Intent"`
	FunnelStage           string `csv:"Funnel Stage"`
	SERPFeatures          string `csv:"SERP Features"`
	ClientURL             string `csv:"Client URL"`
	CompetitorURL         string `csv:"Competitor URL"`
	PriorityScore         string `csv:"Priority Score"`
	Horizon               string `csv:"Horizon"`
	ClientPositionChange  string `csv:"Client Position Change"`
	CompPositionChange    string `csv:"Competitor Position Change"`
	OpportunityScore      string `csv:"Opportunity Score"`
	CompetitiveThreat     string `csv:"Competitive Threat"`
}

// Columns is the export header in order.
var Columns = []string{
	"Keyword",
	"Client Position",
	"Competitor Position",
	"Search Volume",
	"Difficulty",
	"CPC",
	"Client Traffic Cost",
	"Competitor Traffic Cost",
	"Intent",
	"Funnel Stage",
	"SERP Features",
	"Client URL",
	"Competitor URL",
	"Priority Score",
	"Horizon",
	"Client Position Change",
	"Competitor Position Change",
	"Opportunity Score",
	"Competitive Threat",
}

// WriteCSV writes the rows in category to w. The header is always written,
// even when the category is empty.
func WriteCSV(w io.Writer, rows []model.ClassifiedRow, category Category) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if err := enc.EncodeHeader(keywordRow{}); err != nil {
		return eris.Wrap(err, "export: encode csv header")
	}
	for _, r := range Filter(rows, category) {
		if err := enc.Encode(flatten(r)); err != nil {
			return eris.Wrapf(err, "export: encode csv row %q", r.Keyword)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return nil
}

func flatten(r model.ClassifiedRow) keywordRow {
	out := keywordRow{
		Keyword:               r.Keyword,
		Intent:                joinIntents(r.Intents()),
		FunnelStage:           string(r.Funnel),
		PriorityScore:         strconv.FormatFloat(r.PriorityScore, 'f', 2, 64),
		Horizon:               string(r.Horizon),
		ClientTrafficCost:     trafficCost(r.Client),
		CompetitorTrafficCost: trafficCost(r.Competitor),
	}
	if p, ok := r.ClientPosition(); ok {
		out.ClientPosition = strconv.Itoa(p)
	}
	if p, ok := r.CompetitorPosition(); ok {
		out.CompetitorPosition = strconv.Itoa(p)
	}
	if v, ok := r.Volume(); ok {
		out.SearchVolume = strconv.FormatInt(v, 10)
	}
	if d, ok := r.Difficulty(); ok {
		out.Difficulty = formatFloat(d)
	}
	if cpc, ok := cpcOf(r.ComparisonRow); ok {
		out.CPC = formatFloat(cpc)
	}
	if r.Client != nil {
		out.ClientURL = r.Client.URL
	}
	if r.Competitor != nil {
		out.CompetitorURL = r.Competitor.URL
	}
	out.SERPFeatures = strings.Join(serpFeatures(r.ComparisonRow), ", ")
	if v, ok := positionChange(r.Client); ok {
		out.ClientPositionChange = strconv.Itoa(v)
	}
	if v, ok := positionChange(r.Competitor); ok {
		out.CompPositionChange = strconv.Itoa(v)
	}
	if v, ok := opportunityScore(r.ComparisonRow); ok {
		out.OpportunityScore = strconv.FormatFloat(v, 'f', 2, 64)
	}
	if v, ok := competitiveThreat(r.ComparisonRow); ok {
		out.CompetitiveThreat = strconv.FormatFloat(v, 'f', 2, 64)
	}
	return out
}

func positionChange(rec *model.KeywordRecord) (int, bool) {
	if rec == nil || rec.PositionChange == nil {
		return 0, false
	}
	return *rec.PositionChange, true
}

// opportunityScore prefers the competitor's figure, since that is the traffic
// share the client would be taking.
func opportunityScore(r model.ComparisonRow) (float64, bool) {
	for _, rec := range []*model.KeywordRecord{r.Competitor, r.Client} {
		if rec != nil && rec.OpportunityScore != nil {
			return *rec.OpportunityScore, true
		}
	}
	return 0, false
}

// competitiveThreat is the competitor's threat figure only.
func competitiveThreat(r model.ComparisonRow) (float64, bool) {
	if r.Competitor == nil || r.Competitor.CompetitiveThreat == nil {
		return 0, false
	}
	return *r.Competitor.CompetitiveThreat, true
}

// cpcOf prefers the client's CPC and falls back to the competitor's.
func cpcOf(r model.ComparisonRow) (float64, bool) {
	for _, rec := range []*model.KeywordRecord{r.Client, r.Competitor} {
		if rec != nil && rec.CPC != nil {
			return *rec.CPC, true
		}
	}
	return 0, false
}

func serpFeatures(r model.ComparisonRow) []string {
	if r.Competitor != nil && len(r.Competitor.SERPFeatures) > 0 {
		return r.Competitor.SERPFeatures
	}
	if r.Client != nil {
		return r.Client.SERPFeatures
	}
	return nil
}

func trafficCost(rec *model.KeywordRecord) string {
	if v, ok := recordCost(rec); ok {
		return formatFloat(v)
	}
	return ""
}

func joinIntents(intents []model.Intent) string {
	parts := make([]string, len(intents))
	for i, in := range intents {
		parts[i] = string(in)
	}
	return strings.Join(parts, ", ")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// WriteCSVFile writes the rows in category to path.
func WriteCSVFile(path string, rows []model.ClassifiedRow, category Category) (err error) {
	f, err := os.Create(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = eris.Wrapf(cerr, "export: close %s", path)
		}
	}()
	return WriteCSV(f, rows, category)
}
