package ingest

import "github.com/sells-group/keyword-gap/internal/model"

// Dedupe collapses records that share a keyword. The record with the best
// (lowest) position wins; ties, and keywords with no ranking row at all, keep
// the first occurrence. Every URL seen for the keyword is kept in AllURLs.
// Output order follows the first occurrence of each keyword.
func Dedupe(records []model.KeywordRecord) []model.KeywordRecord {
	pos := make(map[string]int, len(records))
	out := make([]model.KeywordRecord, 0, len(records))

	for _, rec := range records {
		i, ok := pos[rec.Keyword]
		if !ok {
			pos[rec.Keyword] = len(out)
			out = append(out, rec)
			continue
		}

		urls := mergeURLs(out[i].AllURLs, rec.AllURLs)
		if better(rec, out[i]) {
			out[i] = rec
		}
		out[i].AllURLs = urls
	}
	return out
}

func better(candidate, current model.KeywordRecord) bool {
	if candidate.Position == nil {
		return false
	}
	if current.Position == nil {
		return true
	}
	return *candidate.Position < *current.Position
}

func mergeURLs(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, u := range list {
			if seen[u] {
				continue
			}
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}
