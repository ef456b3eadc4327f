// Package recommend picks the next habit to suggest to a user.
//
// A suggestion comes from a category other than the one the user's habits
// lean toward, and is filtered for novelty against those habits. When
// nothing novel survives the engine falls back to any habit the user does
// not already have, then to any habit at all, so a valid catalog always
// yields a suggestion.
package recommend

import (
	"fmt"
	"math/rand/v2"

	"github.com/cognicore/habitual/pkg/habitual/catalog"
	"github.com/cognicore/habitual/pkg/habitual/classify"
	"github.com/cognicore/habitual/pkg/habitual/ingest"
	"github.com/cognicore/habitual/pkg/habitual/internalerr"
	"github.com/cognicore/habitual/pkg/habitual/novelty"
	"github.com/cognicore/habitual/pkg/habitual/vectorize"
)

// Rand is the source of every random choice the engine makes.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// GlobalRand draws from the process-wide generator.
var GlobalRand Rand = globalRand{}

// Strategy names the branch that produced a suggestion.
type Strategy string

const (
	StrategyRandom         Strategy = "random"          // no meaningful habits
	StrategyNovel          Strategy = "novel"           // novel habit from another category
	StrategyFallbackUnused Strategy = "fallback_unused" // any habit the user lacks
	StrategyFallbackAny    Strategy = "fallback_any"    // any habit at all
)

// Policy holds the tunables of a decision.
type Policy struct {
	Tokenizer  vectorize.Tokenizer
	CleanRules ingest.CleanRules
	// Threshold is the novelty cut-off. The zero value means
	// novelty.DefaultThreshold. Similarities are never negative, so any
	// negative threshold rejects every candidate and forces the fallbacks.
	Threshold float64
}

// DefaultPolicy is the plain tokenizer, default clean rules and the default
// novelty threshold.
func DefaultPolicy() Policy {
	return Policy{
		Tokenizer:  ingest.NewTokenizer(nil),
		CleanRules: ingest.DefaultCleanRules(),
		Threshold:  novelty.DefaultThreshold,
	}
}

func (p Policy) withDefaults() Policy {
	if p.Tokenizer == nil {
		p.Tokenizer = ingest.NewTokenizer(nil)
	}
	if p.Threshold == 0 {
		p.Threshold = novelty.DefaultThreshold
	}
	return p
}

// Decision is a suggestion with the intermediate results that led to it.
// Dominant, Next, Scores and Pool are empty for StrategyRandom.
type Decision struct {
	Suggestion string
	Strategy   Strategy
	Cleaned    []string
	Dominant   string
	Next       string
	Scores     []classify.CategoryScore
	Pool       []string
}

// Recommend returns one habit for a user with the default policy.
// A nil rnd uses GlobalRand.
func Recommend(habits []string, cat *catalog.Catalog, rnd Rand) (string, error) {
	d, err := Decide(habits, cat, rnd, DefaultPolicy())
	if err != nil {
		return "", err
	}
	return d.Suggestion, nil
}

// Decide runs the full recommendation flow and reports how it went.
func Decide(habits []string, cat *catalog.Catalog, rnd Rand, p Policy) (Decision, error) {
	if cat == nil {
		return Decision{}, catalogError(0)
	}
	if cat.Len() < catalog.MinCategories {
		return Decision{}, catalogError(cat.Len())
	}
	if rnd == nil {
		rnd = GlobalRand
	}
	p = p.withDefaults()

	cleaned := ingest.CleanHabits(habits, p.CleanRules)
	if len(cleaned) == 0 {
		return Decision{
			Suggestion: pick(cat.Flatten(), rnd),
			Strategy:   StrategyRandom,
			Cleaned:    cleaned,
		}, nil
	}

	dominant, scores := classify.Dominant(p.Tokenizer, cleaned, cat)

	others := make([]string, 0, cat.Len()-1)
	for _, name := range cat.Names() {
		if name != dominant {
			others = append(others, name)
		}
	}
	next := pick(others, rnd)

	candidates, _ := cat.Habits(next)
	pool := novelty.Filter(p.Tokenizer, candidates, habits, cleaned, p.Threshold)

	d := Decision{
		Cleaned:  cleaned,
		Dominant: dominant,
		Next:     next,
		Scores:   scores,
		Pool:     pool,
	}

	if len(pool) > 0 {
		d.Suggestion = pick(pool, rnd)
		d.Strategy = StrategyNovel
		return d, nil
	}

	flat := cat.Flatten()
	if unused := without(flat, habits); len(unused) > 0 {
		d.Suggestion = pick(unused, rnd)
		d.Strategy = StrategyFallbackUnused
		return d, nil
	}

	d.Suggestion = pick(flat, rnd)
	d.Strategy = StrategyFallbackAny
	return d, nil
}

func catalogError(n int) error {
	return fmt.Errorf("%w: catalog needs at least %d categories, got %d",
		internalerr.ErrConfiguration, catalog.MinCategories, n)
}

func pick(items []string, rnd Rand) string {
	return items[rnd.IntN(len(items))]
}

// without keeps the items not exactly equal to any of drop, in order.
func without(items, drop []string) []string {
	skip := make(map[string]struct{}, len(drop))
	for _, d := range drop {
		skip[d] = struct{}{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := skip[it]; !ok {
			out = append(out, it)
		}
	}
	return out
}
