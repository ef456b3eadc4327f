// Package vectorize turns a batch of habit descriptions into TF-IDF vectors.
//
// Every call to Fit builds its vocabulary from exactly the strings it is
// given. Vectors from different Fit calls live in different spaces and must
// not be compared; nothing is cached between calls, so concurrent callers
// never share fitted state.
package vectorize

import (
	"math"
	"sort"
)

// Tokenizer splits text into terms.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Vector is one L2-normalized row over a Matrix vocabulary.
// A row whose text had no terms is all zeros.
type Vector []float64

// Matrix is the result of fitting one batch.
type Matrix struct {
	Vocabulary []string  // sorted terms; index i is dimension i
	IDF        []float64 // smoothed inverse document frequency per term
	Rows       []Vector  // one row per input string, in input order
}

// Fit tokenizes batch, builds the vocabulary over it and returns one
// weighted row per input.
//
// Weights are raw term counts times smoothed IDF:
//
//	idf(t) = ln((1 + n) / (1 + df(t))) + 1
//
// where n is the batch size and df(t) the number of strings containing t.
// Rows are then scaled to unit length. An empty vocabulary yields zero rows
// of dimension 0.
func Fit(tok Tokenizer, batch []string) Matrix {
	docs := make([][]string, len(batch))
	df := make(map[string]int)
	for i, text := range batch {
		terms := tok.Tokenize(text)
		docs[i] = terms
		seen := make(map[string]struct{}, len(terms))
		for _, term := range terms {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	vocab := make([]string, 0, len(df))
	for term := range df {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)

	index := make(map[string]int, len(vocab))
	idf := make([]float64, len(vocab))
	n := float64(len(batch))
	for i, term := range vocab {
		index[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	rows := make([]Vector, len(batch))
	for i, terms := range docs {
		row := make(Vector, len(vocab))
		for _, term := range terms {
			row[index[term]]++
		}
		for j := range row {
			row[j] *= idf[j]
		}
		normalize(row)
		rows[i] = row
	}

	return Matrix{
		Vocabulary: vocab,
		IDF:        idf,
		Rows:       rows,
	}
}

// Split returns rows [0, at) and [at, len) as two blocks.
// It is used to separate the user block from the candidate block of a
// combined batch.
func (m Matrix) Split(at int) (head, tail []Vector) {
	if at < 0 {
		at = 0
	}
	if at > len(m.Rows) {
		at = len(m.Rows)
	}
	return m.Rows[:at], m.Rows[at:]
}

// Dim returns the vocabulary size.
func (m Matrix) Dim() int {
	return len(m.Vocabulary)
}

func normalize(v Vector) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] /= norm
	}
}
