// Package export writes classified keyword rows and summaries to CSV, XLSX,
// JSON, and YAML.
package export

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/keyword-gap/internal/model"
)

// Category selects a subset of classified rows.
type Category string

const (
	CategoryAll        Category = "all"
	CategoryQuickWins  Category = "quick_wins"
	CategorySteal      Category = "steal"
	CategoryDefensive  Category = "defensive"
	CategoryClientWins Category = "client_wins"
	CategoryTOFU       Category = "tofu"
	CategoryMOFU       Category = "mofu"
	CategoryBOFU       Category = "bofu"
	CategoryTrending   Category = "trending"
)

// Categories lists every category in workbook order.
var Categories = []Category{
	CategoryAll,
	CategoryQuickWins,
	CategorySteal,
	CategoryDefensive,
	CategoryClientWins,
	CategoryTOFU,
	CategoryMOFU,
	CategoryBOFU,
	CategoryTrending,
}

var sheetNames = map[Category]string{
	CategoryAll:        "All Keywords",
	CategoryQuickWins:  "Quick Wins",
	CategorySteal:      "Steal Opportunities",
	CategoryDefensive:  "Defensive Keywords",
	CategoryClientWins: "Client Wins",
	CategoryTOFU:       "TOFU",
	CategoryMOFU:       "MOFU",
	CategoryBOFU:       "BOFU",
	CategoryTrending:   "Trending",
}

// ParseCategory maps a CLI value such as "quick-wins" or "Steal" to a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if _, ok := sheetNames[c]; ok {
		return c, nil
	}
	return "", eris.Errorf("export: unknown category %q", s)
}

// SheetName is the workbook sheet title for c.
func (c Category) SheetName() string {
	return sheetNames[c]
}

// Includes reports whether a row with classification cl belongs to c.
func (c Category) Includes(cl model.Classification) bool {
	switch c {
	case CategoryAll:
		return true
	case CategoryQuickWins:
		return cl.QuickWin
	case CategorySteal:
		return cl.Steal
	case CategoryDefensive:
		return cl.Defensive
	case CategoryClientWins:
		return cl.ClientWin
	case CategoryTOFU:
		return cl.Funnel == model.FunnelTOFU
	case CategoryMOFU:
		return cl.Funnel == model.FunnelMOFU
	case CategoryBOFU:
		return cl.Funnel == model.FunnelBOFU
	case CategoryTrending:
		return cl.Trending
	}
	return false
}

// Filter returns the rows in c, preserving order.
func Filter(rows []model.ClassifiedRow, c Category) []model.ClassifiedRow {
	out := make([]model.ClassifiedRow, 0, len(rows))
	for _, r := range rows {
		if c.Includes(r.Classification) {
			out = append(out, r)
		}
	}
	return out
}
