package wizard

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Rank filters companies for the selection list. Substring matches on name or
// ticker come first, earliest match first; then near misses by edit distance
// against the name, its words and the ticker. An empty query keeps the input
// order.
func Rank(companies []Company, query string) []Company {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return slices.Clone(companies)
	}
	maxDist := max(1, utf8.RuneCountInString(q)/3)

	type hit struct {
		c     Company
		exact bool
		score int
	}
	var hits []hit
	for _, c := range companies {
		name := strings.ToLower(c.Name)
		ticker := strings.ToLower(c.Ticker)
		if i := strings.Index(name, q); i >= 0 {
			hits = append(hits, hit{c: c, exact: true, score: i})
			continue
		}
		if ticker != "" && strings.Contains(ticker, q) {
			hits = append(hits, hit{c: c, exact: true, score: 0})
			continue
		}
		if d := closest(q, name, ticker); d <= maxDist {
			hits = append(hits, hit{c: c, score: d})
		}
	}
	slices.SortStableFunc(hits, func(a, b hit) int {
		if a.exact != b.exact {
			if a.exact {
				return -1
			}
			return 1
		}
		return a.score - b.score
	})
	out := make([]Company, len(hits))
	for i, h := range hits {
		out[i] = h.c
	}
	return out
}

func closest(q, name, ticker string) int {
	best := levenshtein.ComputeDistance(q, name)
	for _, word := range strings.Fields(name) {
		best = min(best, levenshtein.ComputeDistance(q, word))
	}
	if ticker != "" {
		best = min(best, levenshtein.ComputeDistance(q, ticker))
	}
	return best
}
