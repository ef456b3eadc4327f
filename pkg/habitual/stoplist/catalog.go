package stoplist

import (
	"math"
	"sort"

	"github.com/cognicore/habitual/pkg/habitual/catalog"
	"github.com/cognicore/habitual/pkg/habitual/vectorize"
)

// CatalogStats treats every habit as a document and returns one Stats per
// term, sorted by term.
func CatalogStats(cat *catalog.Catalog, tok vectorize.Tokenizer) []Stats {
	categories := cat.Categories()

	df := make(map[string]int64)
	perCat := make(map[string][]int64)
	pairs := make(map[[2]string]int64)
	var n int64

	for ci, c := range categories {
		for _, habit := range c.Habits {
			n++
			terms := unique(tok.Tokenize(habit))
			for _, t := range terms {
				df[t]++
				counts := perCat[t]
				if counts == nil {
					counts = make([]int64, len(categories))
					perCat[t] = counts
				}
				counts[ci]++
			}
			for i := 0; i < len(terms); i++ {
				for j := i + 1; j < len(terms); j++ {
					a, b := terms[i], terms[j]
					if b < a {
						a, b = b, a
					}
					pairs[[2]string{a, b}]++
				}
			}
		}
	}

	calc := NewCalculator(0)
	pmiMax := make(map[string]float64, len(df))
	seen := make(map[string]bool, len(df))
	for pair, nAB := range pairs {
		a, b := pair[0], pair[1]
		v := calc.NPMI(nAB, df[a], df[b], n)
		for _, t := range []string{a, b} {
			if !seen[t] || v > pmiMax[t] {
				pmiMax[t] = v
				seen[t] = true
			}
		}
	}

	stats := make([]Stats, 0, len(df))
	for term, d := range df {
		stats = append(stats, Stats{
			Term:       term,
			DF:         d,
			DFPercent:  100 * float64(d) / float64(n),
			IDF:        math.Log((1+float64(n))/(1+float64(d))) + 1,
			PMIMax:     pmiMax[term],
			CatEntropy: entropy(perCat[term]),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Term < stats[j].Term })
	return stats
}

// Suggest runs CatalogStats and SuggestCandidates in one step.
func Suggest(cat *catalog.Catalog, tok vectorize.Tokenizer, existing []string, th Thresholds) []Candidate {
	return NewManager(existing).SuggestCandidates(CatalogStats(cat, tok), th)
}

// entropy of a count distribution, normalized by log(len(counts)).
func entropy(counts []int64) float64 {
	if len(counts) < 2 {
		return 0
	}
	var total int64
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}
	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log(p)
	}
	return h / math.Log(float64(len(counts)))
}

func unique(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
