package analysis

import (
	"sort"

	"github.com/sells-group/keyword-gap/internal/model"
)

// Highlight categories, used as keys of Summary.Highlights.
const (
	HighlightQuickWins = "quick_wins"
	HighlightSteal     = "steal_opportunities"
	HighlightDefensive = "defensive_keywords"
	HighlightTrending  = "trending"
)

// Aggregate summarizes a classified run. Side metrics come from the
// deduplicated datasets; category figures come from the classified rows.
// topN bounds the number of highlights kept per category.
func Aggregate(client, competitor *model.Dataset, rows []model.ClassifiedRow, topN int) model.Summary {
	s := model.Summary{
		Client:         sideMetrics(client),
		Competitor:     sideMetrics(competitor),
		MergedKeywords: len(rows),
		Horizons:       make(map[model.Horizon]int),
	}

	for _, r := range rows {
		if r.Client != nil && r.Competitor != nil {
			s.SharedKeywords++
		}

		compValue := r.TrafficCost(model.SideCompetitor)
		clientValue := r.TrafficCost(model.SideClient)

		if r.QuickWin {
			add(&s.QuickWins, compValue)
		}
		if r.Steal {
			add(&s.Steal, compValue)
		}
		if r.Defensive {
			add(&s.Defensive, clientValue)
		}
		if r.ClientWin {
			add(&s.ClientWins, clientValue)
		}
		if r.Trending {
			add(&s.Trending, compValue)
		}
		if stats := s.Funnel.Stage(r.Funnel); stats != nil {
			add(stats, compValue)
		} else {
			s.Funnel.Excluded++
		}
		if r.Horizon != model.HorizonNone {
			s.Horizons[r.Horizon]++
		}
		if r.CompetitorAhead() && r.Competitor.SearchVolume != nil {
			s.OpportunityVolume += *r.Competitor.SearchVolume
		}
	}

	s.ValueAtRisk = s.Defensive.TrafficValue
	s.OpportunityValue = s.QuickWins.TrafficValue + s.Steal.TrafficValue
	s.MarketShare = model.NewMarketShare(s.Client.TotalTraffic, s.Competitor.TotalTraffic)

	if topN > 0 {
		s.Highlights = map[string][]model.Highlight{
			HighlightQuickWins: highlights(TopByPriority(rows, func(c model.Classification) bool { return c.QuickWin }, topN)),
			HighlightSteal:     highlights(TopByPriority(rows, func(c model.Classification) bool { return c.Steal }, topN)),
			HighlightDefensive: highlights(TopByPriority(rows, func(c model.Classification) bool { return c.Defensive }, topN)),
			HighlightTrending:  highlights(TopByPriority(rows, func(c model.Classification) bool { return c.Trending }, topN)),
		}
	}
	return s
}

// TopByPriority returns up to n rows matching pick, highest priority first.
// Ties are broken by keyword so the order is stable.
func TopByPriority(rows []model.ClassifiedRow, pick func(model.Classification) bool, n int) []model.ClassifiedRow {
	var out []model.ClassifiedRow
	for _, r := range rows {
		if pick(r.Classification) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PriorityScore != out[j].PriorityScore {
			return out[i].PriorityScore > out[j].PriorityScore
		}
		return out[i].Keyword < out[j].Keyword
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func sideMetrics(ds *model.Dataset) model.SideMetrics {
	var m model.SideMetrics
	if ds == nil {
		return m
	}
	m.TotalKeywords = len(ds.Records)
	m.Warnings = len(ds.Warnings)

	var posSum int
	for _, rec := range ds.Records {
		if rec.Traffic != nil {
			m.TotalTraffic += *rec.Traffic
		}
		if rec.TrafficCost != nil {
			m.TotalTrafficCost += *rec.TrafficCost
		}
		if rec.Position == nil {
			continue
		}
		p := *rec.Position
		m.RankingKeywords++
		posSum += p
		switch {
		case p <= 3:
			m.Top3++
			m.Top10++
		case p <= 10:
			m.Top10++
		default:
			m.Beyond10++
		}
	}
	if m.RankingKeywords > 0 {
		avg := float64(posSum) / float64(m.RankingKeywords)
		m.AvgPosition = &avg
	}
	return m
}

func add(c *model.CategoryStats, value float64) {
	c.Count++
	c.TrafficValue += value
}

func highlights(rows []model.ClassifiedRow) []model.Highlight {
	out := make([]model.Highlight, 0, len(rows))
	for _, r := range rows {
		h := model.Highlight{
			Keyword:       r.Keyword,
			PriorityScore: r.PriorityScore,
		}
		if v, ok := r.Volume(); ok {
			h.SearchVolume = v
		}
		if d, ok := r.Difficulty(); ok {
			h.Difficulty = d
		}
		if r.Client != nil {
			h.ClientPosition = r.Client.Position
		}
		if r.Competitor != nil {
			h.CompetitorPosition = r.Competitor.Position
		}
		out = append(out, h)
	}
	return out
}
