package insights

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/keyword-gap/internal/analysis"
	"github.com/sells-group/keyword-gap/internal/model"
)

// Default prompt bounds.
const (
	DefaultTopN     = 5
	DefaultMaxBytes = 8000
)

const systemPrompt = "You are an expert SEO strategist conducting a keyword gap analysis."

const instructions = `Provide:
1. Executive summary with key findings
2. Immediate action items (next 30 days)
3. Medium-term strategy (next 3 months)
4. Long-term investment opportunities
5. Content calendar recommendations
6. Technical SEO priorities

Focus on actionable insights that will drive organic visibility improvements.
`

// highlightSections fixes the order keyword lists appear in the prompt.
var highlightSections = []struct {
	key   string
	label string
}{
	{analysis.HighlightQuickWins, "QUICK WINS"},
	{analysis.HighlightSteal, "STEAL OPPORTUNITIES"},
	{analysis.HighlightDefensive, "DEFENSIVE KEYWORDS"},
	{analysis.HighlightTrending, "TRENDING"},
}

// Prompt is a provider-neutral request.
type Prompt struct {
	System string
	User   string
}

// Len is the combined size of the prompt in bytes.
func (p Prompt) Len() int {
	return len(p.System) + len(p.User)
}

// BuildPrompt renders aggregated figures and up to topN highlighted keywords
// per category. The result never exceeds maxBytes: keyword lists shrink
// first, then the text is clipped at a rune boundary. Non-positive
// arguments select the defaults.
func BuildPrompt(s model.Summary, topN, maxBytes int) Prompt {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	system := clip(systemPrompt, maxBytes)
	budget := maxBytes - len(system)

	user := renderPrompt(s, topN)
	for n := topN - 1; len(user) > budget && n >= 0; n-- {
		user = renderPrompt(s, n)
	}
	return Prompt{System: system, User: clip(user, budget)}
}

func renderPrompt(s model.Summary, topN int) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	b.WriteString("Based on the following data, provide strategic insights and actionable recommendations.\n\n")

	writeSide(&b, p, "CLIENT OVERVIEW", s.Client)
	writeSide(&b, p, "COMPETITOR OVERVIEW", s.Competitor)

	b.WriteString("KEY OPPORTUNITIES:\n")
	p.Fprintf(&b, "- Quick Wins (client ranks 6-10, competitor ranks 1-5): %d, traffic value $%.2f\n", s.QuickWins.Count, s.QuickWins.TrafficValue)
	p.Fprintf(&b, "- Steal Opportunities (client ranks 11+ or absent): %d, traffic value $%.2f\n", s.Steal.Count, s.Steal.TrafficValue)
	p.Fprintf(&b, "- Defensive Keywords (client ranks 1-5, competitor close behind): %d, value at risk $%.2f\n", s.Defensive.Count, s.Defensive.TrafficValue)
	p.Fprintf(&b, "- Client Wins: %d\n", s.ClientWins.Count)
	p.Fprintf(&b, "- Trending competitor keywords: %d\n", s.Trending.Count)
	p.Fprintf(&b, "- Shared keywords: %d of %d\n", s.SharedKeywords, s.MergedKeywords)
	p.Fprintf(&b, "- Opportunity search volume: %d\n", s.OpportunityVolume)
	p.Fprintf(&b, "- Client traffic share: %s\n\n", s.MarketShare)

	b.WriteString("CONTENT FUNNEL:\n")
	p.Fprintf(&b, "- TOFU: %d, MOFU: %d, BOFU: %d, unassigned: %d\n\n",
		s.Funnel.TOFU.Count, s.Funnel.MOFU.Count, s.Funnel.BOFU.Count, s.Funnel.Excluded)

	b.WriteString("OPPORTUNITY HORIZONS:\n")
	p.Fprintf(&b, "- Immediate: %d, medium term: %d, long term: %d\n\n",
		s.Horizons[model.HorizonImmediate], s.Horizons[model.HorizonMedium], s.Horizons[model.HorizonLongTerm])

	if topN > 0 && len(s.Highlights) > 0 {
		b.WriteString("TOP KEYWORDS BY CATEGORY:\n")
		for _, sec := range highlightSections {
			items := s.Highlights[sec.key]
			if len(items) == 0 {
				continue
			}
			if len(items) > topN {
				items = items[:topN]
			}
			b.WriteString(sec.label + ":\n")
			for _, h := range items {
				p.Fprintf(&b, "- %s (Volume: %d, Difficulty: %.0f)\n", h.Keyword, h.SearchVolume, h.Difficulty)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(instructions)
	return b.String()
}

func writeSide(b *strings.Builder, p *message.Printer, title string, m model.SideMetrics) {
	b.WriteString(title + ":\n")
	p.Fprintf(b, "- Total Keywords: %d\n", m.TotalKeywords)
	if m.AvgPosition != nil {
		p.Fprintf(b, "- Average Position: %.2f\n", *m.AvgPosition)
	} else {
		b.WriteString("- Average Position: n/a\n")
	}
	p.Fprintf(b, "- Total Traffic: %.0f\n", m.TotalTraffic)
	p.Fprintf(b, "- Traffic Cost: $%.2f\n", m.TotalTrafficCost)
	p.Fprintf(b, "- Top 3 / Top 10 / 11+: %d / %d / %d\n\n", m.Top3, m.Top10, m.Beyond10)
}

// clip truncates s to at most n bytes without splitting a rune.
func clip(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
