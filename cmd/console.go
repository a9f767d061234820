package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/keyword-gap/internal/analysis"
	"github.com/sells-group/keyword-gap/internal/export"
	"github.com/sells-group/keyword-gap/internal/insights"
	"github.com/sells-group/keyword-gap/internal/model"
)

var highlightTitles = []struct {
	key   string
	title string
}{
	{analysis.HighlightQuickWins, "Top quick wins"},
	{analysis.HighlightSteal, "Top steal opportunities"},
	{analysis.HighlightDefensive, "Top defensive keywords"},
	{analysis.HighlightTrending, "Top trending keywords"},
}

func printSummary(out io.Writer, r *export.Report) {
	p := message.NewPrinter(language.English)
	s := r.Summary

	_, _ = p.Fprintf(out, "Keyword gap analysis %s\n\n", shortID(r.RunID))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "METRIC\tCLIENT\tCOMPETITOR")
	_, _ = fmt.Fprintln(w, "------\t------\t----------")
	_, _ = p.Fprintf(w, "Keywords\t%d\t%d\n", s.Client.TotalKeywords, s.Competitor.TotalKeywords)
	_, _ = p.Fprintf(w, "Ranking\t%d\t%d\n", s.Client.RankingKeywords, s.Competitor.RankingKeywords)
	_, _ = p.Fprintf(w, "Avg position\t%s\t%s\n", avgPosition(s.Client.AvgPosition), avgPosition(s.Competitor.AvgPosition))
	_, _ = p.Fprintf(w, "Top 3\t%d\t%d\n", s.Client.Top3, s.Competitor.Top3)
	_, _ = p.Fprintf(w, "Top 10\t%d\t%d\n", s.Client.Top10, s.Competitor.Top10)
	_, _ = p.Fprintf(w, "Traffic\t%.0f\t%.0f\n", s.Client.TotalTraffic, s.Competitor.TotalTraffic)
	_, _ = p.Fprintf(w, "Traffic cost\t$%.2f\t$%.2f\n", s.Client.TotalTrafficCost, s.Competitor.TotalTrafficCost)
	_, _ = p.Fprintf(w, "Warnings\t%d\t%d\n", s.Client.Warnings, s.Competitor.Warnings)
	_ = w.Flush()

	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CATEGORY\tKEYWORDS\tTRAFFIC VALUE")
	_, _ = fmt.Fprintln(w, "--------\t--------\t-------------")
	for _, row := range []struct {
		label string
		stats model.CategoryStats
	}{
		{"Quick wins", s.QuickWins},
		{"Steal opportunities", s.Steal},
		{"Defensive", s.Defensive},
		{"Client wins", s.ClientWins},
		{"Trending", s.Trending},
		{"TOFU", s.Funnel.TOFU},
		{"MOFU", s.Funnel.MOFU},
		{"BOFU", s.Funnel.BOFU},
	} {
		_, _ = p.Fprintf(w, "%s\t%d\t$%.2f\n", row.label, row.stats.Count, row.stats.TrafficValue)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintln(out)
	_, _ = p.Fprintf(out, "Merged keywords: %d (%d shared)\n", s.MergedKeywords, s.SharedKeywords)
	_, _ = p.Fprintf(out, "Client traffic share: %s\n", s.MarketShare.String())
	_, _ = p.Fprintf(out, "Opportunity: $%.2f across %d searches/month\n", s.OpportunityValue, s.OpportunityVolume)
	_, _ = p.Fprintf(out, "Value at risk: $%.2f\n", s.ValueAtRisk)
	_, _ = p.Fprintf(out, "Horizons: %d immediate, %d medium term, %d long term\n",
		s.Horizons[model.HorizonImmediate], s.Horizons[model.HorizonMedium], s.Horizons[model.HorizonLongTerm])

	for _, h := range highlightTitles {
		list := s.Highlights[h.key]
		if len(list) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(out, "\n%s:\n", h.title)
		for _, kw := range list {
			_, _ = p.Fprintf(out, "  %-40s vol %7d  kd %5.1f  client %-4s competitor %-4s\n",
				kw.Keyword, kw.SearchVolume, kw.Difficulty, pos(kw.ClientPosition), pos(kw.CompetitorPosition))
		}
	}
}

// printInsights writes the insights text. A non-empty style renders it as
// terminal markdown.
func printInsights(out io.Writer, res insights.Result, style string) {
	_, _ = fmt.Fprintln(out)
	if !res.Available {
		_, _ = fmt.Fprintf(out, "AI insights unavailable: %v\n", res.Error)
		return
	}

	_, _ = fmt.Fprintf(out, "AI insights (%s):\n\n", res.Provider)
	if style != "" {
		rendered, err := renderMarkdown(res.Text, style)
		if err == nil {
			_, _ = fmt.Fprint(out, rendered)
			return
		}
		zap.L().Warn("insights: render markdown failed", zap.Error(err))
	}
	_, _ = fmt.Fprintln(out, res.Text)
}

func renderMarkdown(md, style string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// markdownStyle picks the render style for insights, or "" for plain text.
func markdownStyle(render bool, configured string) string {
	if !render {
		return ""
	}
	if configured == "" {
		return styles.DarkStyle
	}
	return configured
}

func printWritten(out io.Writer, paths []string) {
	if len(paths) == 0 {
		return
	}
	_, _ = fmt.Fprintln(out, "\nWrote:")
	for _, p := range paths {
		_, _ = fmt.Fprintf(out, "  %s\n", p)
	}
}

func avgPosition(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *p)
}

func pos(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *p)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
