// Package analytics summarizes recorded suggestions.
package analytics

import (
	"context"
	"sort"

	"github.com/cognicore/habitual/pkg/habitual/store"
	"github.com/cognicore/habitual/pkg/habitual/vectorize"
)

// DefaultTopK is the length of the ranked lists in a Snapshot.
const DefaultTopK = 10

// Analyzer aggregates suggestion history. It is not safe for concurrent
// use; build one per report.
type Analyzer struct {
	tok vectorize.Tokenizer // optional; enables term counts

	total       int64
	strategies  map[string]int64
	dominant    map[string]int64
	next        map[string]int64
	suggestions map[string]int64
	termDF      map[string]int64
	topK        int
}

// NewAnalyzer creates an empty analyzer. A nil tokenizer skips term counts.
func NewAnalyzer(tok vectorize.Tokenizer) *Analyzer {
	return &Analyzer{
		tok:         tok,
		strategies:  make(map[string]int64),
		dominant:    make(map[string]int64),
		next:        make(map[string]int64),
		suggestions: make(map[string]int64),
		termDF:      make(map[string]int64),
		topK:        DefaultTopK,
	}
}

// WithTopK sets the length of ranked lists. Values below 1 are clamped.
func (a *Analyzer) WithTopK(k int) *Analyzer {
	if k < 1 {
		k = 1
	}
	a.topK = k
	return a
}

// Process consumes one suggestion.
func (a *Analyzer) Process(s store.Suggestion) {
	a.total++
	a.strategies[s.Strategy]++
	a.suggestions[s.Suggestion]++
	if s.Dominant != "" {
		a.dominant[s.Dominant]++
	}
	if s.Next != "" {
		a.next[s.Next]++
	}

	if a.tok == nil {
		return
	}
	// Document frequency: a term counts once per request.
	seen := make(map[string]struct{})
	for _, h := range s.Habits {
		for _, term := range a.tok.Tokenize(h) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			a.termDF[term]++
		}
	}
}

// Count is a ranked key.
type Count struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// Snapshot is the aggregated view of the processed history.
type Snapshot struct {
	Total          int64            `json:"total"`
	ByStrategy     map[string]int64 `json:"by_strategy"`
	ByDominant     []Count          `json:"by_dominant"`
	ByNext         []Count          `json:"by_next"`
	FallbackRate   float64          `json:"fallback_rate"`
	TopSuggestions []Count          `json:"top_suggestions"`
	TopTerms       []Count          `json:"top_terms,omitempty"`
}

// Snapshot returns the current aggregates.
// FallbackRate is the share of suggestions made by either fallback branch.
func (a *Analyzer) Snapshot() Snapshot {
	byStrategy := make(map[string]int64, len(a.strategies))
	var fallbacks int64
	for k, v := range a.strategies {
		byStrategy[k] = v
		if k == "fallback_unused" || k == "fallback_any" {
			fallbacks += v
		}
	}

	snap := Snapshot{
		Total:          a.total,
		ByStrategy:     byStrategy,
		ByDominant:     ranked(a.dominant, 0),
		ByNext:         ranked(a.next, 0),
		TopSuggestions: ranked(a.suggestions, a.topK),
	}
	if a.total > 0 {
		snap.FallbackRate = float64(fallbacks) / float64(a.total)
	}
	if a.tok != nil {
		snap.TopTerms = ranked(a.termDF, a.topK)
	}
	return snap
}

// AnalyzeStore runs an analyzer over the history matching q.
func AnalyzeStore(ctx context.Context, st store.Store, tok vectorize.Tokenizer, q store.ListQuery) (Snapshot, error) {
	list, err := st.ListSuggestions(ctx, q)
	if err != nil {
		return Snapshot{}, err
	}
	a := NewAnalyzer(tok)
	for _, s := range list {
		a.Process(s)
	}
	return a.Snapshot(), nil
}

// ranked sorts counts descending, ties by key. limit <= 0 keeps all.
func ranked(m map[string]int64, limit int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
