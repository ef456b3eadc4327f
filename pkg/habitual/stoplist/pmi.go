package stoplist

import "math"

// Calculator computes pointwise mutual information from document counts.
type Calculator struct {
	epsilon float64 // additive smoothing; 0 disables
}

// NewCalculator returns a calculator with the given smoothing. Negative
// values are treated as 0.
func NewCalculator(epsilon float64) *Calculator {
	if epsilon < 0 {
		epsilon = 0
	}
	return &Calculator{epsilon: epsilon}
}

// PMI is
//
//	log((N_ab + ε) * N / ((N_a + ε)(N_b + ε)))
//
// where N_ab counts documents with both terms and N all documents.
func (c *Calculator) PMI(nAB, nA, nB, n int64) float64 {
	if n == 0 {
		return 0
	}
	num := (float64(nAB) + c.epsilon) * float64(n)
	den := (float64(nA) + c.epsilon) * (float64(nB) + c.epsilon)
	if num == 0 || den == 0 {
		return 0
	}
	return math.Log(num / den)
}

// NPMI scales PMI into [-1, 1] by -log P(a,b). Pairs that never co-occur,
// or co-occur in every document, score 0.
func (c *Calculator) NPMI(nAB, nA, nB, n int64) float64 {
	if n == 0 || nAB == 0 {
		return 0
	}
	pAB := (float64(nAB) + c.epsilon) / (float64(n) + c.epsilon)
	logPAB := math.Log(pAB)
	if logPAB == 0 {
		return 0
	}
	return c.PMI(nAB, nA, nB, n) / -logPAB
}
