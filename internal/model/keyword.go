package model

import (
	"fmt"
	"strings"
	"time"
)

// Side identifies which export a record came from.
type Side string

const (
	SideClient     Side = "client"
	SideCompetitor Side = "competitor"
)

// Intent is a search intent label as reported by the ranking export.
type Intent string

const (
	IntentInformational Intent = "informational"
	IntentCommercial    Intent = "commercial"
	IntentTransactional Intent = "transactional"
	IntentNavigational  Intent = "navigational"
)

// ParseIntent maps a raw label to an Intent. Unknown labels return ("", false).
func ParseIntent(s string) (Intent, bool) {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentInformational:
		return IntentInformational, true
	case IntentCommercial:
		return IntentCommercial, true
	case IntentTransactional:
		return IntentTransactional, true
	case IntentNavigational:
		return IntentNavigational, true
	}
	return "", false
}

// KeywordRecord is one normalized row of a ranking export. Pointer fields are
// nil when the source cell was blank or unparseable.
type KeywordRecord struct {
	Keyword          string     `json:"keyword" yaml:"keyword"`
	RawKeyword       string     `json:"raw_keyword" yaml:"raw_keyword"`
	Position         *int       `json:"position" yaml:"position"`
	PreviousPosition *int       `json:"previous_position" yaml:"previous_position"`
	SearchVolume     *int64     `json:"search_volume" yaml:"search_volume"`
	Difficulty       *float64   `json:"difficulty" yaml:"difficulty"`
	CPC              *float64   `json:"cpc" yaml:"cpc"`
	URL              string     `json:"url,omitempty" yaml:"url,omitempty"`
	AllURLs          []string   `json:"all_urls,omitempty" yaml:"all_urls,omitempty"`
	Traffic          *float64   `json:"traffic" yaml:"traffic"`
	TrafficPct       *float64   `json:"traffic_pct" yaml:"traffic_pct"`
	TrafficCost      *float64   `json:"traffic_cost" yaml:"traffic_cost"`
	Competition      *float64   `json:"competition" yaml:"competition"`
	ResultsCount     *int64     `json:"results_count" yaml:"results_count"`
	Trend            []float64  `json:"trend,omitempty" yaml:"trend,omitempty"`
	Timestamp        *time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	SERPFeatures     []string   `json:"serp_features,omitempty" yaml:"serp_features,omitempty"`
	Intents          []Intent   `json:"intents,omitempty" yaml:"intents,omitempty"`
	PositionType     string     `json:"position_type,omitempty" yaml:"position_type,omitempty"`
	Row              int        `json:"row" yaml:"row"`

	// Derived per-row metrics. Nil when an input they need is absent.
	PositionChange    *int     `json:"position_change" yaml:"position_change"`
	OpportunityScore  *float64 `json:"opportunity_score" yaml:"opportunity_score"`
	CompetitiveThreat *float64 `json:"competitive_threat" yaml:"competitive_threat"`
}

// Derive fills the derived metrics from the parsed columns. Position change
// is previous minus current position, so positive means the keyword moved
// up. Opportunity score is volume * traffic% / (difficulty + 1). Competitive
// threat is position * traffic cost.
func (r *KeywordRecord) Derive() {
	r.PositionChange, r.OpportunityScore, r.CompetitiveThreat = nil, nil, nil
	if r.Position != nil && r.PreviousPosition != nil {
		change := *r.PreviousPosition - *r.Position
		r.PositionChange = &change
	}
	if r.SearchVolume != nil && r.TrafficPct != nil && r.Difficulty != nil {
		score := float64(*r.SearchVolume) * *r.TrafficPct / (*r.Difficulty + 1)
		r.OpportunityScore = &score
	}
	if r.Position != nil && r.TrafficCost != nil {
		threat := float64(*r.Position) * *r.TrafficCost
		r.CompetitiveThreat = &threat
	}
}

// Rising reports whether the trend series ends higher than it starts.
func (r *KeywordRecord) Rising() bool {
	if r == nil || len(r.Trend) < 2 {
		return false
	}
	return r.Trend[len(r.Trend)-1] > r.Trend[0]
}

// Dataset is the normalized, deduplicated content of one export.
type Dataset struct {
	Side     Side                 `json:"side"`
	Source   string               `json:"source"`
	Records  []KeywordRecord      `json:"records"`
	Warnings []DataQualityWarning `json:"warnings,omitempty"`
	RawRows  int                  `json:"raw_rows"`
}

// DataQualityWarning records a cell that was coerced to absent or a row that
// was dropped during normalization. It is never fatal.
type DataQualityWarning struct {
	Row    int    `json:"row" yaml:"row"`
	Column string `json:"column" yaml:"column"`
	Value  string `json:"value" yaml:"value"`
	Reason string `json:"reason" yaml:"reason"`
}

func (w DataQualityWarning) Error() string {
	return fmt.Sprintf("row %d: %s %q: %s", w.Row, w.Column, w.Value, w.Reason)
}
