package analysis

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/keyword-gap/internal/model"
)

// Priority score weights.
const (
	weightVolume      = 0.4
	weightTrafficCost = 0.3
	weightEase        = 0.3
)

// intentStage maps the intents that place a keyword in the content funnel.
var intentStage = map[model.Intent]model.FunnelStage{
	model.IntentInformational: model.FunnelTOFU,
	model.IntentCommercial:    model.FunnelMOFU,
	model.IntentTransactional: model.FunnelBOFU,
}

// Classify computes the category memberships of one row. It is a pure
// function of its arguments.
func Classify(row model.ComparisonRow, cfg model.AnalysisConfig) model.Classification {
	return model.Classification{
		QuickWin:      IsQuickWin(row, cfg),
		Steal:         IsSteal(row, cfg),
		Defensive:     IsDefensive(row, cfg),
		ClientWin:     IsClientWin(row),
		Trending:      IsTrending(row, cfg),
		Funnel:        FunnelStageOf(row),
		Horizon:       HorizonOf(row, cfg),
		PriorityScore: PriorityScore(row),
	}
}

// ClassifyAll classifies every row into a new slice. An invalid config
// fails the whole pass and returns no rows.
func ClassifyAll(rows []model.ComparisonRow, cfg model.AnalysisConfig) ([]model.ClassifiedRow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, eris.Wrap(err, "analysis: classify")
	}
	out := make([]model.ClassifiedRow, len(rows))
	for i, row := range rows {
		out[i] = model.ClassifiedRow{
			ComparisonRow:  row,
			Classification: Classify(row, cfg),
		}
	}
	return out, nil
}

// IsQuickWin: client on page one's lower half, competitor in the top five,
// enough volume, and a difficulty the client can take on.
func IsQuickWin(row model.ComparisonRow, cfg model.AnalysisConfig) bool {
	client, ok := row.ClientPosition()
	if !ok || !within(client, 6, 10) {
		return false
	}
	comp, ok := row.CompetitorPosition()
	if !ok || !within(comp, 1, 5) {
		return false
	}
	vol, ok := row.ClientVolume()
	if !ok || vol < cfg.MinSearchVolume {
		return false
	}
	diff, ok := row.ClientDifficulty()
	return ok && diff <= cfg.MaxKeywordDifficulty
}

// IsSteal: client absent or beyond page one while the competitor holds a
// top-five spot on a keyword with enough volume.
func IsSteal(row model.ComparisonRow, cfg model.AnalysisConfig) bool {
	if client, ok := row.ClientPosition(); ok && client <= 10 {
		return false
	}
	comp, ok := row.CompetitorPosition()
	if !ok || !within(comp, 1, 5) {
		return false
	}
	vol, ok := row.Volume()
	return ok && vol >= cfg.MinSearchVolume
}

// IsDefensive: client in the top five with the competitor close behind (or
// ahead) on page one.
func IsDefensive(row model.ComparisonRow, cfg model.AnalysisConfig) bool {
	client, ok := row.ClientPosition()
	if !ok || !within(client, 1, 5) {
		return false
	}
	comp, ok := row.CompetitorPosition()
	if !ok || !within(comp, 2, 10) {
		return false
	}
	return comp-client <= cfg.DefensiveThreshold
}

// IsClientWin: the client ranks and the competitor either does not or ranks lower.
func IsClientWin(row model.ComparisonRow) bool {
	client, ok := row.ClientPosition()
	if !ok {
		return false
	}
	comp, ok := row.CompetitorPosition()
	return !ok || client < comp
}

// IsTrending: the competitor's interest series is rising on a keyword with
// enough volume.
func IsTrending(row model.ComparisonRow, cfg model.AnalysisConfig) bool {
	if !row.Competitor.Rising() {
		return false
	}
	vol, ok := row.Volume()
	return ok && vol >= cfg.MinSearchVolume
}

// FunnelStageOf maps the row's intent set to a funnel stage. Sets with no
// funnel intent, or with intents from more than one stage, are ambiguous and
// return FunnelNone.
func FunnelStageOf(row model.ComparisonRow) model.FunnelStage {
	stage := model.FunnelNone
	for _, intent := range row.Intents() {
		s, ok := intentStage[intent]
		if !ok {
			continue
		}
		if stage != model.FunnelNone && stage != s {
			return model.FunnelNone
		}
		stage = s
	}
	return stage
}

// HorizonOf buckets keywords the competitor outranks the client on by
// difficulty. Other rows have no horizon.
func HorizonOf(row model.ComparisonRow, cfg model.AnalysisConfig) model.Horizon {
	if !row.CompetitorAhead() {
		return model.HorizonNone
	}
	diff, ok := row.Difficulty()
	switch {
	case !ok:
		return model.HorizonMedium
	case diff <= cfg.QuickWinThreshold:
		return model.HorizonImmediate
	case diff >= cfg.LongTermThreshold:
		return model.HorizonLongTerm
	default:
		return model.HorizonMedium
	}
}

// PriorityScore blends volume, traffic value, and ease into one ranking
// figure. Competitor figures are preferred since they describe the value on
// offer; absent inputs contribute nothing.
func PriorityScore(row model.ComparisonRow) float64 {
	src := row.Competitor
	if src == nil {
		src = row.Client
	}
	if src == nil {
		return 0
	}

	var score float64
	if src.SearchVolume != nil {
		score += float64(*src.SearchVolume) * weightVolume
	} else if vol, ok := row.Volume(); ok {
		score += float64(vol) * weightVolume
	}
	if src.TrafficCost != nil {
		score += *src.TrafficCost * weightTrafficCost
	}
	if src.Difficulty != nil {
		score += (100 - *src.Difficulty) * weightEase
	} else if diff, ok := row.Difficulty(); ok {
		score += (100 - diff) * weightEase
	}
	return score
}

func within(v, lo, hi int) bool {
	return v >= lo && v <= hi
}
