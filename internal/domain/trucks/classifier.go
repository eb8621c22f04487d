package trucks

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// TextClassifier matches truck names inside free-text category or
// description strings. All table patterns are matched in a single pass
// with Aho-Corasick; a fuzzy pass over word windows catches near-miss
// spellings like "colt disel".
type TextClassifier struct {
	matcher *ahocorasick.Matcher
	owners  []int // pattern index -> Table index
}

// maxFuzzyRank bounds how far a fuzzy match may drift before we refuse to
// classify. Rank is the Levenshtein distance between pattern and window.
const maxFuzzyRank = 2

// NewTextClassifier builds a classifier over the package tag table.
func NewTextClassifier() *TextClassifier {
	c := &TextClassifier{}
	var patterns []string
	for ti, t := range Table {
		for _, p := range t.Patterns {
			patterns = append(patterns, p)
			c.owners = append(c.owners, ti)
		}
	}
	c.matcher = ahocorasick.NewStringMatcher(patterns)
	return c
}

// Classify finds the truck named inside free text. Exact (normalized
// substring) matches win; otherwise the closest fuzzy window match within
// the rank bound is used. Returns false when nothing plausible matches.
func (c *TextClassifier) Classify(text string) (Truck, bool) {
	norm := Normalize(text)
	if norm == "" {
		return Truck{}, false
	}

	if hits := c.matcher.Match([]byte(norm)); len(hits) > 0 {
		best := hits[0]
		for _, h := range hits[1:] {
			if c.owners[h] < c.owners[best] {
				best = h
			}
		}
		return Table[c.owners[best]], true
	}

	bestRank := -1
	bestIdx := -1
	for _, win := range windows(text) {
		for ti, t := range Table {
			for _, p := range t.Patterns {
				rank := fuzzy.RankMatchNormalizedFold(p, win)
				if rank < 0 || rank > maxFuzzyRank {
					continue
				}
				if bestRank < 0 || rank < bestRank {
					bestRank = rank
					bestIdx = ti
				}
			}
		}
	}
	if bestIdx >= 0 {
		return Table[bestIdx], true
	}
	return Truck{}, false
}

// windows yields every single word and adjacent word pair of text, joined
// without separators so multi-word names line up with the table patterns.
func windows(text string) []string {
	words := strings.Fields(text)
	out := make([]string, 0, len(words)*2)
	for i, w := range words {
		out = append(out, Normalize(w))
		if i+1 < len(words) {
			out = append(out, Normalize(w+words[i+1]))
		}
	}
	return out
}
