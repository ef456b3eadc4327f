package stoplist

import (
	"math"
	"testing"
)

func TestPMIAssociation(t *testing.T) {
	calc := NewCalculator(1.0)

	if pmi := calc.PMI(8, 10, 10, 20); pmi <= 0 {
		t.Errorf("strong association should be positive, got %f", pmi)
	}
	if pmi := calc.PMI(25, 50, 50, 100); math.Abs(pmi) > 0.1 {
		t.Errorf("independent terms should be near 0, got %f", pmi)
	}
	if pmi := calc.PMI(5, 50, 50, 100); pmi >= 0 {
		t.Errorf("anti-correlated terms should be negative, got %f", pmi)
	}
}

func TestPMIUnsmoothed(t *testing.T) {
	calc := NewCalculator(0)

	// log(2 * 4 / (2 * 2)) = log 2
	if got := calc.PMI(2, 2, 2, 4); math.Abs(got-math.Log(2)) > 1e-12 {
		t.Errorf("PMI = %f, want ln 2", got)
	}
	if got := calc.PMI(0, 2, 2, 4); got != 0 {
		t.Errorf("no co-occurrence without smoothing should be 0, got %f", got)
	}
	if got := NewCalculator(-3).PMI(2, 2, 2, 4); math.Abs(got-math.Log(2)) > 1e-12 {
		t.Errorf("negative epsilon should act as 0, got %f", got)
	}
}

func TestNPMIRange(t *testing.T) {
	calc := NewCalculator(0)

	// Perfectly associated pair in half the documents.
	if got := calc.NPMI(2, 2, 2, 4); math.Abs(got-1) > 1e-12 {
		t.Errorf("NPMI = %f, want 1", got)
	}
	if got := calc.NPMI(4, 4, 4, 4); got != 0 {
		t.Errorf("pair in every document should be 0, got %f", got)
	}
	if got := calc.NPMI(0, 1, 1, 4); got != 0 {
		t.Errorf("never co-occurring should be 0, got %f", got)
	}
	if got := calc.NPMI(1, 1, 1, 0); got != 0 {
		t.Errorf("empty corpus should be 0, got %f", got)
	}
}
