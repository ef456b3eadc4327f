package recommend

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/cognicore/habitual/pkg/habitual/catalog"
	"github.com/cognicore/habitual/pkg/habitual/internalerr"
)

// seqRand replays fixed choices, each taken modulo n.
type seqRand struct {
	vals []int
	i    int
}

func (r *seqRand) IntN(n int) int {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v % n
}

func mustCatalog(t *testing.T, cats ...catalog.Category) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(cats)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return c
}

func TestRecommendReaderGetsWorkout(t *testing.T) {
	// Learning dominates; the first other category is Fitness and all of its
	// habits are novel for a reader, so the first pick is the first habit.
	d, err := Decide([]string{"Read a book for 20 minutes"}, catalog.Default(), &seqRand{vals: []int{0, 0}}, DefaultPolicy())
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}

	if d.Dominant != "Learning" {
		t.Errorf("Dominant = %s, want Learning", d.Dominant)
	}
	if d.Next != "Fitness" {
		t.Errorf("Next = %s, want Fitness", d.Next)
	}
	if d.Strategy != StrategyNovel {
		t.Errorf("Strategy = %s, want novel", d.Strategy)
	}
	if d.Suggestion != "Workout for 30 minutes" {
		t.Errorf("Suggestion = %q, want Workout for 30 minutes", d.Suggestion)
	}
	if len(d.Pool) != 5 {
		t.Errorf("Pool = %v, want all five Fitness habits", d.Pool)
	}
}

func TestRecommendEmptyHabitsIsRandom(t *testing.T) {
	cat := catalog.Default()

	for _, habits := range [][]string{nil, {}, {"gym", "xkcd", ""}} {
		d, err := Decide(habits, cat, &seqRand{vals: []int{6}}, DefaultPolicy())
		if err != nil {
			t.Fatal(err)
		}
		if d.Strategy != StrategyRandom {
			t.Errorf("habits %v: strategy = %s, want random", habits, d.Strategy)
		}
		if d.Suggestion != cat.Flatten()[6] {
			t.Errorf("habits %v: suggestion = %q, want flattened[6]", habits, d.Suggestion)
		}
		if d.Dominant != "" || d.Pool != nil {
			t.Errorf("random strategy should not classify: %+v", d)
		}
	}
}

func TestRecommendSingleCategoryIsConfigurationError(t *testing.T) {
	_, err := catalog.New([]catalog.Category{{Name: "Fitness", Habits: []string{"Workout for 30 minutes"}}})
	if !errors.Is(err, internalerr.ErrConfiguration) {
		t.Fatalf("catalog.New: got %v, want ErrConfiguration", err)
	}

	if _, err := Recommend([]string{"Walk daily"}, &catalog.Catalog{}, nil); !errors.Is(err, internalerr.ErrConfiguration) {
		t.Errorf("empty catalog: got %v, want ErrConfiguration", err)
	}
	if _, err := Recommend(nil, nil, nil); !errors.Is(err, internalerr.ErrConfiguration) {
		t.Errorf("nil catalog: got %v, want ErrConfiguration", err)
	}
}

func TestRecommendFallbackUnused(t *testing.T) {
	cat := mustCatalog(t,
		catalog.Category{Name: "A", Habits: []string{"Walk the dog daily", "Feed the cat"}},
		catalog.Category{Name: "B", Habits: []string{"Walk the dog daily"}},
	)
	p := DefaultPolicy()
	p.Threshold = 0.1 // rejects "Feed the cat", which shares "the"

	d, err := Decide([]string{"Walk the dog daily"}, cat, &seqRand{vals: []int{0}}, p)
	if err != nil {
		t.Fatal(err)
	}

	if d.Dominant != "B" || d.Next != "A" {
		t.Errorf("Dominant/Next = %s/%s, want B/A", d.Dominant, d.Next)
	}
	if len(d.Pool) != 0 {
		t.Errorf("Pool = %v, want empty", d.Pool)
	}
	if d.Strategy != StrategyFallbackUnused || d.Suggestion != "Feed the cat" {
		t.Errorf("got %s/%q, want fallback_unused/Feed the cat", d.Strategy, d.Suggestion)
	}
}

func TestRecommendFallbackAny(t *testing.T) {
	cat := mustCatalog(t,
		catalog.Category{Name: "A", Habits: []string{"Walk the dog daily"}},
		catalog.Category{Name: "B", Habits: []string{"Walk the dog daily"}},
	)

	d, err := Decide([]string{"Walk the dog daily"}, cat, &seqRand{vals: []int{1}}, DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}

	if d.Dominant != "A" {
		t.Errorf("tie should go to A, got %s", d.Dominant)
	}
	if d.Strategy != StrategyFallbackAny || d.Suggestion != "Walk the dog daily" {
		t.Errorf("got %s/%q, want fallback_any", d.Strategy, d.Suggestion)
	}
}

func TestRecommendClosure(t *testing.T) {
	cat := catalog.Default()
	flat := make(map[string]struct{})
	for _, h := range cat.Flatten() {
		flat[h] = struct{}{}
	}

	inputs := [][]string{
		nil,
		{"Read a book for 20 minutes"},
		{"Meditate every morning", "Practice breathing"},
		{"Workout for 30 minutes", "Walk 10,000 steps", "Do 10 push-ups"},
		{"zzz", "Organize your workspace"},
		{"totally unrelated hobby"},
	}

	rnd := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 50; i++ {
		for _, habits := range inputs {
			got, err := Recommend(habits, cat, rnd)
			if err != nil {
				t.Fatalf("Recommend(%v): %v", habits, err)
			}
			if _, ok := flat[got]; !ok {
				t.Fatalf("Recommend(%v) = %q, not in catalog", habits, got)
			}
		}
	}
}

func TestRecommendNeverRepeatsOwnedHabit(t *testing.T) {
	cat := catalog.Default()
	owned := []string{"Workout for 30 minutes", "Read a book for 20 minutes", "Practice gratitude", "Write a journal entry"}

	rnd := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 100; i++ {
		got, err := Recommend(owned, cat, rnd)
		if err != nil {
			t.Fatal(err)
		}
		for _, h := range owned {
			if got == h {
				t.Fatalf("suggested owned habit %q", got)
			}
		}
	}
}

func TestRecommendDeterministicWithSeed(t *testing.T) {
	cat := catalog.Default()
	habits := []string{"Meditate for 10 minutes", "Call a friend or relative"}

	a, _ := Recommend(habits, cat, rand.New(rand.NewPCG(42, 42)))
	b, _ := Recommend(habits, cat, rand.New(rand.NewPCG(42, 42)))
	if a != b {
		t.Errorf("same seed gave %q and %q", a, b)
	}
}

func TestDecideNextNeverDominant(t *testing.T) {
	cat := catalog.Default()
	rnd := rand.New(rand.NewPCG(3, 5))

	for i := 0; i < 30; i++ {
		d, err := Decide([]string{"Stretch for 5 minutes"}, cat, rnd, DefaultPolicy())
		if err != nil {
			t.Fatal(err)
		}
		if d.Next == d.Dominant {
			t.Fatalf("next category equals dominant %s", d.Dominant)
		}
	}
}

func TestPolicyDefaults(t *testing.T) {
	p := Policy{}.withDefaults()
	if p.Tokenizer == nil || p.Threshold != 0.5 {
		t.Errorf("withDefaults = %+v", p)
	}
	if got := (Policy{Threshold: -1}).withDefaults().Threshold; got != -1 {
		t.Errorf("negative threshold rewritten to %f", got)
	}
}

func TestNegativeThresholdRejectsEveryCandidate(t *testing.T) {
	p := DefaultPolicy()
	p.Threshold = -1

	d, err := Decide([]string{"Read a book for 20 minutes"}, catalog.Default(), &seqRand{vals: []int{0, 0}}, p)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Strategy != StrategyFallbackUnused {
		t.Errorf("strategy = %s, want %s", d.Strategy, StrategyFallbackUnused)
	}
	if d.Suggestion == "Read a book for 20 minutes" {
		t.Errorf("suggested a habit the user already has")
	}
}
