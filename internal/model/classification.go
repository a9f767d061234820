package model

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// FunnelStage is the content-funnel bucket of a keyword.
type FunnelStage string

const (
	FunnelNone FunnelStage = ""
	FunnelTOFU FunnelStage = "TOFU"
	FunnelMOFU FunnelStage = "MOFU"
	FunnelBOFU FunnelStage = "BOFU"
)

// FunnelStages lists the stages in funnel order.
var FunnelStages = []FunnelStage{FunnelTOFU, FunnelMOFU, FunnelBOFU}

// Horizon buckets a gap keyword by the effort needed to close it.
type Horizon string

const (
	HorizonNone      Horizon = ""
	HorizonImmediate Horizon = "immediate"
	HorizonMedium    Horizon = "medium_term"
	HorizonLongTerm  Horizon = "long_term"
)

// Classification holds the derived labels of one ComparisonRow. It is always
// recomputed from the row and an AnalysisConfig, never stored on its own.
type Classification struct {
	QuickWin      bool        `json:"quick_win" yaml:"quick_win"`
	Steal         bool        `json:"steal" yaml:"steal"`
	Defensive     bool        `json:"defensive" yaml:"defensive"`
	ClientWin     bool        `json:"client_win" yaml:"client_win"`
	Trending      bool        `json:"trending" yaml:"trending"`
	Funnel        FunnelStage `json:"funnel,omitempty" yaml:"funnel,omitempty"`
	Horizon       Horizon     `json:"horizon,omitempty" yaml:"horizon,omitempty"`
	PriorityScore float64     `json:"priority_score" yaml:"priority_score"`
}

// ClassifiedRow is a ComparisonRow with its classification attached.
type ClassifiedRow struct {
	ComparisonRow  `yaml:",inline"`
	Classification `json:"classification" yaml:"classification"`
}

// AnalysisConfig is the immutable threshold set for one analysis run.
type AnalysisConfig struct {
	MinSearchVolume      int64   `json:"min_search_volume" yaml:"min_search_volume" mapstructure:"min_search_volume"`
	MaxKeywordDifficulty float64 `json:"max_keyword_difficulty" yaml:"max_keyword_difficulty" mapstructure:"max_keyword_difficulty"`
	QuickWinThreshold    float64 `json:"quick_win_threshold" yaml:"quick_win_threshold" mapstructure:"quick_win_threshold"`
	DefensiveThreshold   int     `json:"defensive_threshold" yaml:"defensive_threshold" mapstructure:"defensive_threshold"`
	LongTermThreshold    float64 `json:"long_term_threshold" yaml:"long_term_threshold" mapstructure:"long_term_threshold"`
	MaxMeasuredPosition  int     `json:"max_measured_position" yaml:"max_measured_position" mapstructure:"max_measured_position"`
}

// DefaultAnalysisConfig returns the thresholds used when nothing is configured.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		MinSearchVolume:      100,
		MaxKeywordDifficulty: 70,
		QuickWinThreshold:    30,
		DefensiveThreshold:   4,
		LongTermThreshold:    70,
		MaxMeasuredPosition:  100,
	}
}

// Validate checks the thresholds for internal consistency.
func (c AnalysisConfig) Validate() error {
	if c.MinSearchVolume < 0 {
		return eris.Errorf("analysis config: min_search_volume must be >= 0, got %d", c.MinSearchVolume)
	}
	if c.MaxKeywordDifficulty < 0 || c.MaxKeywordDifficulty > 100 {
		return eris.Errorf("analysis config: max_keyword_difficulty must be within 0-100, got %s", fmtFloat(c.MaxKeywordDifficulty))
	}
	if c.QuickWinThreshold < 0 || c.LongTermThreshold < 0 {
		return eris.New("analysis config: horizon thresholds must be >= 0")
	}
	if c.QuickWinThreshold > c.LongTermThreshold {
		return eris.Errorf("analysis config: quick_win_threshold (%s) exceeds long_term_threshold (%s)",
			fmtFloat(c.QuickWinThreshold), fmtFloat(c.LongTermThreshold))
	}
	if c.DefensiveThreshold < 0 {
		return eris.Errorf("analysis config: defensive_threshold must be >= 0, got %d", c.DefensiveThreshold)
	}
	if c.MaxMeasuredPosition < 1 {
		return eris.Errorf("analysis config: max_measured_position must be >= 1, got %d", c.MaxMeasuredPosition)
	}
	return nil
}

func fmtFloat(f float64) string {
	return fmt.Sprintf("%g", f)
}
