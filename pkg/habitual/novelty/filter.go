// Package novelty drops candidate habits that are too close to what the
// user already does.
package novelty

import (
	"github.com/cognicore/habitual/pkg/habitual/similarity"
	"github.com/cognicore/habitual/pkg/habitual/vectorize"
)

// DefaultThreshold is the mean similarity at which a candidate stops being
// novel. Candidates must score strictly below it.
const DefaultThreshold = 0.5

// Verdict records how one candidate was judged.
type Verdict struct {
	Candidate string  `json:"candidate"`
	Score     float64 `json:"score"`
	Duplicate bool    `json:"duplicate,omitempty"`
	Kept      bool    `json:"kept"`
}

// Filter returns the candidates that are novel for the user, in input order.
//
// A candidate equal to one of the raw user habits (case-sensitive) is always
// dropped. Every other candidate is fitted together with the cleaned habits
// and kept when its mean similarity to them is below threshold.
func Filter(tok vectorize.Tokenizer, candidates, user, cleaned []string, threshold float64) []string {
	out := make([]string, 0, len(candidates))
	for _, v := range Judge(tok, candidates, user, cleaned, threshold) {
		if v.Kept {
			out = append(out, v.Candidate)
		}
	}
	return out
}

// Judge is Filter with the per-candidate scores exposed.
func Judge(tok vectorize.Tokenizer, candidates, user, cleaned []string, threshold float64) []Verdict {
	owned := make(map[string]struct{}, len(user))
	for _, h := range user {
		owned[h] = struct{}{}
	}

	verdicts := make([]Verdict, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := owned[c]; dup {
			verdicts = append(verdicts, Verdict{Candidate: c, Duplicate: true})
			continue
		}

		score := Score(tok, cleaned, c)
		verdicts = append(verdicts, Verdict{
			Candidate: c,
			Score:     score,
			Kept:      score < threshold,
		})
	}
	return verdicts
}

// Score is the mean similarity of cleaned against candidate, in a space
// fitted on exactly those strings.
func Score(tok vectorize.Tokenizer, cleaned []string, candidate string) float64 {
	batch := make([]string, 0, len(cleaned)+1)
	batch = append(batch, cleaned...)
	batch = append(batch, candidate)

	m := vectorize.Fit(tok, batch)
	user, cand := m.Split(len(cleaned))
	return similarity.Mean(user, cand)
}
