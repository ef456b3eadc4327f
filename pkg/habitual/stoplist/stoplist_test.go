package stoplist

import (
	"math"
	"testing"

	"github.com/cognicore/habitual/pkg/habitual/catalog"
	"github.com/cognicore/habitual/pkg/habitual/ingest"
)

func TestManagerBasic(t *testing.T) {
	mgr := NewManager([]string{"the", "for"})

	if !mgr.IsStop("the") {
		t.Error("'the' should be a stopword")
	}
	if mgr.IsStop("walk") {
		t.Error("'walk' should not be a stopword")
	}

	mgr.Add("minutes", Reason{HighDF: true})
	if !mgr.IsStop("minutes") {
		t.Error("'minutes' should be a stopword after Add")
	}
	mgr.Remove("minutes")
	if mgr.IsStop("minutes") {
		t.Error("'minutes' should not be a stopword after Remove")
	}

	all := mgr.All()
	if len(all) != 2 || all[0] != "for" || all[1] != "the" {
		t.Errorf("All() = %v, want sorted [for the]", all)
	}
}

func TestSuggestCandidates(t *testing.T) {
	mgr := NewManager([]string{"daily"})

	stats := []Stats{
		{Term: "for", DFPercent: 40, PMIMax: 0.1, CatEntropy: 0.95},     // candidate
		{Term: "yoga", DFPercent: 5, PMIMax: 0.9, CatEntropy: 0},        // rare, focused
		{Term: "minutes", DFPercent: 60, PMIMax: 0.2, CatEntropy: 0.9},  // candidate
		{Term: "push", DFPercent: 30, PMIMax: 1.0, CatEntropy: 0.85},    // strong partner
		{Term: "daily", DFPercent: 90, PMIMax: 0.0, CatEntropy: 1.0},    // already a stopword
		{Term: "journal", DFPercent: 25, PMIMax: 0.1, CatEntropy: 0.3},  // one category
	}

	got := mgr.SuggestCandidates(stats, DefaultThresholds())

	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %+v", got)
	}
	// minutes: (0.6 + 0.8 + 0.9)/3 > for: (0.4 + 0.9 + 0.95)/3
	if got[0].Term != "minutes" || got[1].Term != "for" {
		t.Errorf("order = %s, %s", got[0].Term, got[1].Term)
	}
	for _, c := range got {
		if !c.Reason.HighDF || !c.Reason.LowPMI || !c.Reason.HighEntropy {
			t.Errorf("%s: incomplete reason %+v", c.Term, c.Reason)
		}
		if c.Score <= 0 || c.Score > 1 {
			t.Errorf("%s: score %f out of range", c.Term, c.Score)
		}
	}
}

func TestSuggestCandidatesEmpty(t *testing.T) {
	got := NewManager(nil).SuggestCandidates(nil, DefaultThresholds())
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func mustCatalog(t *testing.T, cats ...catalog.Category) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(cats)
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

func TestCatalogStats(t *testing.T) {
	cat := mustCatalog(t,
		catalog.Category{Name: "A", Habits: []string{"do the alpha", "do the beta"}},
		catalog.Category{Name: "B", Habits: []string{"do the gamma", "do the delta"}},
	)

	stats := CatalogStats(cat, ingest.NewTokenizer(nil))

	byTerm := make(map[string]Stats)
	for _, s := range stats {
		byTerm[s.Term] = s
	}
	if len(byTerm) != 6 {
		t.Fatalf("expected 6 terms, got %v", stats)
	}
	for i := 1; i < len(stats); i++ {
		if stats[i-1].Term >= stats[i].Term {
			t.Fatalf("stats not sorted: %v", stats)
		}
	}

	do := byTerm["do"]
	if do.DF != 4 || do.DFPercent != 100 {
		t.Errorf("do: df=%d pct=%f", do.DF, do.DFPercent)
	}
	if math.Abs(do.CatEntropy-1) > 1e-12 {
		t.Errorf("do: entropy %f, want 1", do.CatEntropy)
	}
	if do.PMIMax != 0 {
		t.Errorf("do: pmi max %f, want 0", do.PMIMax)
	}
	if math.Abs(do.IDF-1) > 1e-12 {
		t.Errorf("do: idf %f, want 1", do.IDF)
	}

	alpha := byTerm["alpha"]
	if alpha.DF != 1 || alpha.CatEntropy != 0 {
		t.Errorf("alpha: %+v", alpha)
	}
}

func TestSuggestOnCatalog(t *testing.T) {
	cat := mustCatalog(t,
		catalog.Category{Name: "A", Habits: []string{"do the alpha", "do the beta"}},
		catalog.Category{Name: "B", Habits: []string{"do the gamma", "do the delta"}},
	)
	tok := ingest.NewTokenizer(nil)

	got := Suggest(cat, tok, nil, DefaultThresholds())
	if len(got) != 2 || got[0].Term != "do" || got[1].Term != "the" {
		t.Errorf("Suggest = %+v, want do, the", got)
	}

	got = Suggest(cat, tok, []string{"the"}, DefaultThresholds())
	if len(got) != 1 || got[0].Term != "do" {
		t.Errorf("existing stopword should be skipped, got %+v", got)
	}
}

func TestSuggestKeepsAssociatedTerms(t *testing.T) {
	cat := mustCatalog(t,
		catalog.Category{Name: "A", Habits: []string{"run fast", "walk"}},
		catalog.Category{Name: "B", Habits: []string{"fast run", "swim"}},
	)

	// "run" and "fast" are spread evenly but always appear together.
	if got := Suggest(cat, ingest.NewTokenizer(nil), nil, DefaultThresholds()); len(got) != 0 {
		t.Errorf("expected no candidates, got %+v", got)
	}
}

func TestSuggestDefaultCatalogDeterministic(t *testing.T) {
	tok := ingest.NewTokenizer(nil)
	a := Suggest(catalog.Default(), tok, nil, DefaultThresholds())
	b := Suggest(catalog.Default(), tok, nil, DefaultThresholds())

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("candidate %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
