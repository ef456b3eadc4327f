package vectorize

import (
	"math"
	"testing"

	"github.com/cognicore/habitual/pkg/habitual/ingest"
)

func TestFitVocabularySortedAndScoped(t *testing.T) {
	tok := ingest.NewTokenizer(nil)

	m := Fit(tok, []string{"Walk the dog", "Feed the cat"})

	want := []string{"cat", "dog", "feed", "the", "walk"}
	if len(m.Vocabulary) != len(want) {
		t.Fatalf("vocabulary = %v, want %v", m.Vocabulary, want)
	}
	for i := range want {
		if m.Vocabulary[i] != want[i] {
			t.Errorf("vocabulary[%d] = %q, want %q", i, m.Vocabulary[i], want[i])
		}
	}

	// Refitting on a different batch gives a different space.
	other := Fit(tok, []string{"Walk"})
	if other.Dim() != 1 {
		t.Errorf("second fit should only know 'walk', got %v", other.Vocabulary)
	}
}

func TestFitSmoothedIDF(t *testing.T) {
	tok := ingest.NewTokenizer(nil)

	m := Fit(tok, []string{"walk the dog", "feed the cat"})

	for i, term := range m.Vocabulary {
		var want float64
		if term == "the" {
			want = 1 // ln(3/3) + 1
		} else {
			want = math.Log(3.0/2.0) + 1
		}
		if math.Abs(m.IDF[i]-want) > 1e-12 {
			t.Errorf("idf(%s) = %f, want %f", term, m.IDF[i], want)
		}
	}
}

func TestFitRowsUnitLength(t *testing.T) {
	tok := ingest.NewTokenizer(nil)

	m := Fit(tok, []string{"Read a book for 20 minutes", "Learn 10 new words", "Read read read"})

	for i, row := range m.Rows {
		var sum float64
		for _, x := range row {
			sum += x * x
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("row %d has squared norm %f, want 1", i, sum)
		}
	}
}

func TestFitTermCounts(t *testing.T) {
	tok := ingest.NewTokenizer(nil)

	// A single document: every idf is 1, so weights are raw counts.
	m := Fit(tok, []string{"read read book"})

	var readW, bookW float64
	for i, term := range m.Vocabulary {
		switch term {
		case "read":
			readW = m.Rows[0][i]
		case "book":
			bookW = m.Rows[0][i]
		}
	}
	if math.Abs(readW/bookW-2) > 1e-9 {
		t.Errorf("read should weigh twice book, got %f vs %f", readW, bookW)
	}
}

func TestFitDegenerateBatch(t *testing.T) {
	tok := ingest.NewTokenizer(nil)

	m := Fit(tok, []string{"", "!!", "a"})

	if m.Dim() != 0 {
		t.Errorf("expected empty vocabulary, got %v", m.Vocabulary)
	}
	if len(m.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(m.Rows))
	}
	for i, row := range m.Rows {
		if len(row) != 0 {
			t.Errorf("row %d should be empty, got %v", i, row)
		}
	}
}

func TestFitEmptyRowInBatch(t *testing.T) {
	tok := ingest.NewTokenizer(nil)

	m := Fit(tok, []string{"???", "Meditate daily"})

	for _, x := range m.Rows[0] {
		if x != 0 {
			t.Fatalf("row without terms should be zero, got %v", m.Rows[0])
		}
	}
}

func TestSplit(t *testing.T) {
	tok := ingest.NewTokenizer(nil)
	m := Fit(tok, []string{"one two", "three four", "five six"})

	tests := []struct {
		at             int
		headLen, tailL int
	}{
		{0, 0, 3},
		{1, 1, 2},
		{3, 3, 0},
		{-1, 0, 3},
		{10, 3, 0},
	}
	for _, tt := range tests {
		head, tail := m.Split(tt.at)
		if len(head) != tt.headLen || len(tail) != tt.tailL {
			t.Errorf("Split(%d) = %d/%d, want %d/%d", tt.at, len(head), len(tail), tt.headLen, tt.tailL)
		}
	}
}
