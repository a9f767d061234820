package ingest

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/keyword-gap/internal/model"
)

// NormalizeOptions configures row normalization.
type NormalizeOptions struct {
	// Positions above this are treated the same as "not ranking".
	MaxMeasuredPosition int
}

// blankMarkers are cell values that mean "no data" rather than bad data.
var blankMarkers = map[string]bool{
	"":    true,
	"-":   true,
	"--":  true,
	"n/a": true,
	"na":  true,
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"Jan 2006",
	"January 2006",
}

// Normalize validates the table schema and converts every data row into a
// KeywordRecord. Duplicate keywords are collapsed with Dedupe. A table with
// no usable keyword rows is rejected.
func Normalize(t *Table, side model.Side, opts NormalizeOptions) (*model.Dataset, error) {
	idx, err := ValidateSchema(t.Header)
	if err != nil {
		if se, ok := err.(*SchemaError); ok {
			se.Source = t.Source
		}
		return nil, err
	}
	if opts.MaxMeasuredPosition <= 0 {
		opts.MaxMeasuredPosition = model.DefaultAnalysisConfig().MaxMeasuredPosition
	}

	n := &normalizer{
		idx:    idx,
		opts:   opts,
		folder: cases.Lower(language.Und),
	}

	ds := &model.Dataset{
		Side:    side,
		Source:  t.Source,
		RawRows: len(t.Rows),
		Records: make([]model.KeywordRecord, 0, len(t.Rows)),
	}
	for _, row := range t.Rows {
		rec, ok := n.record(row)
		if !ok {
			continue
		}
		ds.Records = append(ds.Records, rec)
	}
	ds.Records = Dedupe(ds.Records)
	ds.Warnings = n.warnings
	if len(ds.Records) == 0 {
		return nil, eris.Errorf("ingest: %s has no keyword rows", t.Source)
	}
	for i := range ds.Records {
		ds.Records[i].Derive()
	}
	return ds, nil
}

// NormalizeKeyword trims, collapses inner whitespace, and lowercases a
// keyword so it can serve as the join key.
func NormalizeKeyword(s string) string {
	return cases.Lower(language.Und).String(strings.Join(strings.Fields(s), " "))
}

type normalizer struct {
	idx      ColumnIndex
	opts     NormalizeOptions
	folder   cases.Caser
	warnings []model.DataQualityWarning
	line     int
}

func (n *normalizer) warn(col, value, reason string) {
	n.warnings = append(n.warnings, model.DataQualityWarning{
		Row:    n.line,
		Column: col,
		Value:  value,
		Reason: reason,
	})
}

func (n *normalizer) record(row Row) (model.KeywordRecord, bool) {
	n.line = row.Line
	cell := func(col string) string { return n.idx.Cell(row.Cells, col) }

	raw := cell(ColKeyword)
	keyword := n.folder.String(strings.Join(strings.Fields(raw), " "))
	if keyword == "" {
		n.warn(ColKeyword, raw, "empty keyword, row dropped")
		return model.KeywordRecord{}, false
	}

	rec := model.KeywordRecord{
		Keyword:          keyword,
		RawKeyword:       raw,
		Position:         n.position(ColPosition, cell(ColPosition)),
		PreviousPosition: n.position(ColPreviousPosition, cell(ColPreviousPosition)),
		SearchVolume:     n.count(ColSearchVolume, cell(ColSearchVolume)),
		Difficulty:       n.bounded(ColDifficulty, cell(ColDifficulty), 0, 100),
		CPC:              n.bounded(ColCPC, cell(ColCPC), 0, math.MaxFloat64),
		URL:              cell(ColURL),
		Traffic:          n.bounded(ColTraffic, cell(ColTraffic), 0, math.MaxFloat64),
		TrafficPct:       n.bounded(ColTrafficPct, cell(ColTrafficPct), 0, 100),
		TrafficCost:      n.bounded(ColTrafficCost, cell(ColTrafficCost), 0, math.MaxFloat64),
		Competition:      n.bounded(ColCompetition, cell(ColCompetition), 0, math.MaxFloat64),
		ResultsCount:     n.count(ColResultsCount, cell(ColResultsCount)),
		Trend:            n.trend(cell(ColTrends)),
		Timestamp:        n.timestamp(cell(ColTimestamp)),
		SERPFeatures:     labelSet(cell(ColSERPFeatures)),
		Intents:          n.intents(cell(ColIntents)),
		PositionType:     cell(ColPositionType),
		Row:              row.Line,
	}
	if rec.URL != "" {
		rec.AllURLs = []string{rec.URL}
	}
	return rec, true
}

// number parses a numeric cell, tolerating thousands separators, currency
// and percent signs. Blank cells return (0, false) without a warning.
func (n *normalizer) number(col, s string) (float64, bool) {
	if blankMarkers[strings.ToLower(s)] {
		return 0, false
	}
	clean := strings.NewReplacer(",", "", "$", "", "%", "", " ", "").Replace(s)
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		n.warn(col, s, "not a number")
		return 0, false
	}
	return f, true
}

func (n *normalizer) bounded(col, s string, lo, hi float64) *float64 {
	f, ok := n.number(col, s)
	if !ok {
		return nil
	}
	if f < lo || f > hi {
		n.warn(col, s, "out of range")
		return nil
	}
	return &f
}

func (n *normalizer) integer(col, s string) (int64, bool) {
	f, ok := n.number(col, s)
	if !ok {
		return 0, false
	}
	if f != math.Trunc(f) {
		n.warn(col, s, "not a whole number")
		return 0, false
	}
	return int64(f), true
}

func (n *normalizer) count(col, s string) *int64 {
	v, ok := n.integer(col, s)
	if !ok {
		return nil
	}
	if v < 0 {
		n.warn(col, s, "negative count")
		return nil
	}
	return &v
}

// position parses a ranking position. Zero and values beyond the measured
// range mean "not ranking" and are absent without a warning.
func (n *normalizer) position(col, s string) *int {
	v, ok := n.integer(col, s)
	if !ok {
		return nil
	}
	if v < 0 {
		n.warn(col, s, "negative position")
		return nil
	}
	if v == 0 || v > int64(n.opts.MaxMeasuredPosition) {
		return nil
	}
	p := int(v)
	return &p
}

func (n *normalizer) trend(s string) []float64 {
	if blankMarkers[strings.ToLower(s)] {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			n.warn(ColTrends, s, "not a numeric series")
			return nil
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (n *normalizer) timestamp(s string) *time.Time {
	if blankMarkers[strings.ToLower(s)] {
		return nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			ts = ts.UTC()
			return &ts
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil && secs > 0 {
		ts := time.Unix(secs, 0).UTC()
		return &ts
	}
	n.warn(ColTimestamp, s, "unrecognized timestamp")
	return nil
}

func (n *normalizer) intents(s string) []model.Intent {
	labels := labelSet(s)
	if len(labels) == 0 {
		return nil
	}
	seen := make(map[model.Intent]bool, len(labels))
	out := make([]model.Intent, 0, len(labels))
	for _, l := range labels {
		intent, ok := model.ParseIntent(l)
		if !ok {
			n.warn(ColIntents, l, "unknown intent")
			continue
		}
		if seen[intent] {
			continue
		}
		seen[intent] = true
		out = append(out, intent)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// labelSet splits a comma-separated cell into a sorted, de-duplicated set.
func labelSet(s string) []string {
	if blankMarkers[strings.ToLower(s)] {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
