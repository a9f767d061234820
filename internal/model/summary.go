package model

import (
	"encoding/json"
	"strconv"

	"gopkg.in/yaml.v3"
)

// SideMetrics summarizes one deduplicated export.
type SideMetrics struct {
	TotalKeywords    int      `json:"total_keywords" yaml:"total_keywords"`
	RankingKeywords  int      `json:"ranking_keywords" yaml:"ranking_keywords"`
	AvgPosition      *float64 `json:"avg_position" yaml:"avg_position"`
	TotalTraffic     float64  `json:"total_traffic" yaml:"total_traffic"`
	TotalTrafficCost float64  `json:"total_traffic_cost" yaml:"total_traffic_cost"`
	Top3             int      `json:"top_3_keywords" yaml:"top_3_keywords"`
	Top10            int      `json:"top_10_keywords" yaml:"top_10_keywords"`
	Beyond10         int      `json:"keywords_11_plus" yaml:"keywords_11_plus"`
	Warnings         int      `json:"warnings" yaml:"warnings"`
}

// CategoryStats counts the members of one category and sums their traffic value.
type CategoryStats struct {
	Count        int     `json:"count" yaml:"count"`
	TrafficValue float64 `json:"traffic_value" yaml:"traffic_value"`
}

// MarketShare is the client's share of combined traffic. It is undefined when
// neither side has any traffic.
type MarketShare struct {
	Value   float64
	Defined bool
}

// NewMarketShare computes client / (client + competitor), guarding zero.
func NewMarketShare(client, competitor float64) MarketShare {
	total := client + competitor
	if total <= 0 {
		return MarketShare{}
	}
	return MarketShare{Value: client / total, Defined: true}
}

func (m MarketShare) String() string {
	if !m.Defined {
		return "undefined"
	}
	return strconv.FormatFloat(m.Value*100, 'f', 1, 64) + "%"
}

// MarshalJSON encodes the share as a number, or the string "undefined".
func (m MarketShare) MarshalJSON() ([]byte, error) {
	if !m.Defined {
		return json.Marshal("undefined")
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts the forms produced by MarshalJSON.
func (m *MarketShare) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*m = MarketShare{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*m = MarketShare{Value: v, Defined: true}
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (m MarketShare) MarshalYAML() (any, error) {
	if !m.Defined {
		return "undefined", nil
	}
	return m.Value, nil
}

var _ yaml.Marshaler = MarketShare{}

// FunnelStats counts keywords per funnel stage.
type FunnelStats struct {
	TOFU     CategoryStats `json:"tofu" yaml:"tofu"`
	MOFU     CategoryStats `json:"mofu" yaml:"mofu"`
	BOFU     CategoryStats `json:"bofu" yaml:"bofu"`
	Excluded int           `json:"excluded" yaml:"excluded"`
}

// Stage returns a pointer to the stats for stage, or nil for FunnelNone.
func (f *FunnelStats) Stage(stage FunnelStage) *CategoryStats {
	switch stage {
	case FunnelTOFU:
		return &f.TOFU
	case FunnelMOFU:
		return &f.MOFU
	case FunnelBOFU:
		return &f.BOFU
	}
	return nil
}

// Summary is the aggregated result of one analysis run.
type Summary struct {
	Client            SideMetrics     `json:"client" yaml:"client"`
	Competitor        SideMetrics     `json:"competitor" yaml:"competitor"`
	MergedKeywords    int             `json:"merged_keywords" yaml:"merged_keywords"`
	SharedKeywords    int             `json:"shared_keywords" yaml:"shared_keywords"`
	QuickWins         CategoryStats   `json:"quick_wins" yaml:"quick_wins"`
	Steal             CategoryStats   `json:"steal_opportunities" yaml:"steal_opportunities"`
	Defensive         CategoryStats   `json:"defensive_keywords" yaml:"defensive_keywords"`
	ClientWins        CategoryStats   `json:"client_wins" yaml:"client_wins"`
	Trending          CategoryStats   `json:"trending" yaml:"trending"`
	Funnel            FunnelStats     `json:"funnel" yaml:"funnel"`
	Horizons          map[Horizon]int `json:"horizons" yaml:"horizons"`
	ValueAtRisk       float64         `json:"value_at_risk" yaml:"value_at_risk"`
	OpportunityValue  float64         `json:"opportunity_value" yaml:"opportunity_value"`
	OpportunityVolume int64           `json:"opportunity_volume" yaml:"opportunity_volume"`
	MarketShare       MarketShare     `json:"market_share" yaml:"market_share"`

	// Top keywords per category, highest priority first. Filled by the
	// aggregator so prompt building never needs the per-row table.
	Highlights map[string][]Highlight `json:"highlights,omitempty" yaml:"highlights,omitempty"`
}

// Highlight is a compact view of one keyword used in summaries and prompts.
type Highlight struct {
	Keyword            string  `json:"keyword" yaml:"keyword"`
	SearchVolume       int64   `json:"search_volume" yaml:"search_volume"`
	Difficulty         float64 `json:"difficulty" yaml:"difficulty"`
	ClientPosition     *int    `json:"client_position" yaml:"client_position"`
	CompetitorPosition *int    `json:"competitor_position" yaml:"competitor_position"`
	PriorityScore      float64 `json:"priority_score" yaml:"priority_score"`
}
