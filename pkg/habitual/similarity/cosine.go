// Package similarity scores TF-IDF vectors against each other.
//
// All scores are cosine similarities clamped to [0, 1]. A zero vector is
// similar to nothing, including itself.
package similarity

import (
	"math"

	"github.com/cognicore/habitual/pkg/habitual/vectorize"
)

// Cosine returns the cosine similarity of a and b.
// Vectors of different length are compared over their common prefix.
func Cosine(a, b vectorize.Vector) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, x := range a {
		na += x * x
	}
	for _, x := range b {
		nb += x * x
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

// Pairwise returns the |a|×|b| matrix of cosine similarities.
func Pairwise(a, b []vectorize.Vector) [][]float64 {
	out := make([][]float64, len(a))
	for i, u := range a {
		row := make([]float64, len(b))
		for j, v := range b {
			row[j] = Cosine(u, v)
		}
		out[i] = row
	}
	return out
}

// Mean averages every entry of Pairwise(a, b).
// It is 0 when either side is empty.
func Mean(a, b []vectorize.Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var sum float64
	for _, u := range a {
		for _, v := range b {
			sum += Cosine(u, v)
		}
	}
	return clamp(sum / float64(len(a)*len(b)))
}

// MeanPerColumn averages Pairwise(a, b) over a, giving one score per row of b.
// With a empty every score is 0.
func MeanPerColumn(a, b []vectorize.Vector) []float64 {
	out := make([]float64, len(b))
	if len(a) == 0 {
		return out
	}
	for j, v := range b {
		var sum float64
		for _, u := range a {
			sum += Cosine(u, v)
		}
		out[j] = clamp(sum / float64(len(a)))
	}
	return out
}

func clamp(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
