package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/keyword-gap/internal/model"
)

func withCost(r *model.KeywordRecord, traffic, cost float64) *model.KeywordRecord {
	r.Traffic = fp(traffic)
	r.TrafficCost = fp(cost)
	return r
}

func runAggregate(t *testing.T, client, competitor *model.Dataset, topN int) (model.Summary, []model.ClassifiedRow) {
	t.Helper()
	rows, err := ClassifyAll(Merge(client, competitor), model.DefaultAnalysisConfig())
	require.NoError(t, err)
	return Aggregate(client, competitor, rows, topN), rows
}

func TestAggregate_CategoryValues(t *testing.T) {
	client := dataset(model.SideClient,
		withCost(kw("quick", ip(8), 500, 40), 20, 30),
		withCost(kw("defend", ip(2), 300, 30), 80, 120),
		withCost(kw("solo", ip(1), 200, 10), 40, 15),
	)
	competitor := dataset(model.SideCompetitor,
		withCost(kw("quick", ip(3), 500, 40), 60, 90),
		withCost(kw("defend", ip(4), 300, 30), 30, 45),
		withCost(kw("steal", ip(2), 1000, 55), 100, 250),
	)

	s, _ := runAggregate(t, client, competitor, 5)

	assert.Equal(t, 4, s.MergedKeywords)
	assert.Equal(t, 2, s.SharedKeywords)

	assert.Equal(t, 1, s.QuickWins.Count)
	assert.InDelta(t, 90, s.QuickWins.TrafficValue, 0.001)
	assert.Equal(t, 1, s.Steal.Count)
	assert.InDelta(t, 250, s.Steal.TrafficValue, 0.001)
	assert.Equal(t, 1, s.Defensive.Count)
	assert.InDelta(t, 120, s.Defensive.TrafficValue, 0.001)

	// "defend" (2 vs 4) and "solo" (competitor absent) are client wins.
	assert.Equal(t, 2, s.ClientWins.Count)
	assert.InDelta(t, 135, s.ClientWins.TrafficValue, 0.001)

	assert.InDelta(t, 120, s.ValueAtRisk, 0.001)
	assert.InDelta(t, 340, s.OpportunityValue, 0.001)
	assert.Equal(t, int64(1500), s.OpportunityVolume)
	assert.Equal(t, 4, s.Funnel.Excluded)
}

func TestAggregate_SideMetrics(t *testing.T) {
	client := dataset(model.SideClient,
		withCost(kw("a", ip(2), 100, 10), 10, 5),
		withCost(kw("b", ip(7), 100, 10), 5, 2),
		withCost(kw("c", ip(30), 100, 10), 1, 1),
		kw("d", nil, 100, 10),
	)

	s, _ := runAggregate(t, client, nil, 0)

	assert.Equal(t, 4, s.Client.TotalKeywords)
	assert.Equal(t, 3, s.Client.RankingKeywords)
	require.NotNil(t, s.Client.AvgPosition)
	assert.InDelta(t, 13, *s.Client.AvgPosition, 0.001)
	assert.Equal(t, 1, s.Client.Top3)
	assert.Equal(t, 2, s.Client.Top10)
	assert.Equal(t, 1, s.Client.Beyond10)
	assert.InDelta(t, 16, s.Client.TotalTraffic, 0.001)
	assert.InDelta(t, 8, s.Client.TotalTrafficCost, 0.001)

	assert.Zero(t, s.Competitor.TotalKeywords)
	assert.Nil(t, s.Competitor.AvgPosition)
	assert.Nil(t, s.Highlights)
}

func TestAggregate_MarketShare(t *testing.T) {
	t.Run("bounded", func(t *testing.T) {
		client := dataset(model.SideClient, withCost(kw("a", ip(1), 100, 10), 25, 0))
		competitor := dataset(model.SideCompetitor, withCost(kw("a", ip(2), 100, 10), 75, 0))
		s, _ := runAggregate(t, client, competitor, 0)
		require.True(t, s.MarketShare.Defined)
		assert.InDelta(t, 0.25, s.MarketShare.Value, 0.0001)
		assert.GreaterOrEqual(t, s.MarketShare.Value, 0.0)
		assert.LessOrEqual(t, s.MarketShare.Value, 1.0)
	})

	t.Run("undefined_without_traffic", func(t *testing.T) {
		client := dataset(model.SideClient, kw("a", ip(1), 100, 10))
		competitor := dataset(model.SideCompetitor, kw("a", ip(2), 100, 10))
		s, _ := runAggregate(t, client, competitor, 0)
		assert.False(t, s.MarketShare.Defined)
		assert.Equal(t, "undefined", s.MarketShare.String())
	})
}

func TestAggregate_FunnelAndHorizons(t *testing.T) {
	info := withCost(kw("how to seo", ip(2), 500, 20), 10, 10)
	info.Intents = []model.Intent{model.IntentInformational}
	buy := withCost(kw("buy seo tool", ip(3), 500, 80), 10, 40)
	buy.Intents = []model.Intent{model.IntentTransactional}
	mixed := withCost(kw("seo agency", ip(4), 500, 50), 10, 5)
	mixed.Intents = []model.Intent{model.IntentCommercial, model.IntentTransactional}

	s, _ := runAggregate(t, nil, dataset(model.SideCompetitor, info, buy, mixed), 0)

	assert.Equal(t, 1, s.Funnel.TOFU.Count)
	assert.InDelta(t, 10, s.Funnel.TOFU.TrafficValue, 0.001)
	assert.Equal(t, 1, s.Funnel.BOFU.Count)
	assert.InDelta(t, 40, s.Funnel.BOFU.TrafficValue, 0.001)
	assert.Zero(t, s.Funnel.MOFU.Count)
	assert.Equal(t, 1, s.Funnel.Excluded)

	assert.Equal(t, 1, s.Horizons[model.HorizonImmediate])
	assert.Equal(t, 1, s.Horizons[model.HorizonMedium])
	assert.Equal(t, 1, s.Horizons[model.HorizonLongTerm])
}

func TestAggregate_Highlights(t *testing.T) {
	competitor := dataset(model.SideCompetitor,
		kw("alpha", ip(1), 5000, 40),
		kw("beta", ip(2), 800, 40),
		kw("gamma", ip(3), 2000, 40),
	)

	s, _ := runAggregate(t, nil, competitor, 2)

	steal := s.Highlights[HighlightSteal]
	require.Len(t, steal, 2)
	assert.Equal(t, "alpha", steal[0].Keyword)
	assert.Equal(t, "gamma", steal[1].Keyword)
	assert.Equal(t, int64(5000), steal[0].SearchVolume)
	assert.Nil(t, steal[0].ClientPosition)
	require.NotNil(t, steal[0].CompetitorPosition)
	assert.Equal(t, 1, *steal[0].CompetitorPosition)

	assert.Empty(t, s.Highlights[HighlightQuickWins])
}

func TestTopByPriority_TiesBreakOnKeyword(t *testing.T) {
	rows := []model.ClassifiedRow{
		{ComparisonRow: model.ComparisonRow{Keyword: "b"}, Classification: model.Classification{Steal: true, PriorityScore: 10}},
		{ComparisonRow: model.ComparisonRow{Keyword: "a"}, Classification: model.Classification{Steal: true, PriorityScore: 10}},
		{ComparisonRow: model.ComparisonRow{Keyword: "c"}, Classification: model.Classification{Steal: true, PriorityScore: 20}},
		{ComparisonRow: model.ComparisonRow{Keyword: "d"}, Classification: model.Classification{PriorityScore: 99}},
	}

	got := TopByPriority(rows, func(c model.Classification) bool { return c.Steal }, 10)
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].Keyword)
	assert.Equal(t, "a", got[1].Keyword)
	assert.Equal(t, "b", got[2].Keyword)
	assert.Equal(t, "b", rows[0].Keyword, "input order is preserved")
}
