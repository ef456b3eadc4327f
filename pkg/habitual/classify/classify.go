// Package classify finds the category a user's habits lean toward.
package classify

import (
	"github.com/cognicore/habitual/pkg/habitual/catalog"
	"github.com/cognicore/habitual/pkg/habitual/similarity"
	"github.com/cognicore/habitual/pkg/habitual/vectorize"
)

// CategoryScore is the mean similarity between the user's habits and one
// category.
type CategoryScore struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Scores returns one score per category, in catalog order.
//
// Each category is scored in its own vector space: the cleaned habits and
// the category's habits are fitted together, and the score is the mean of
// all user×category similarities.
func Scores(tok vectorize.Tokenizer, cleaned []string, cat *catalog.Catalog) []CategoryScore {
	names := cat.Names()
	out := make([]CategoryScore, len(names))
	for i, name := range names {
		habits, _ := cat.Habits(name)

		batch := make([]string, 0, len(cleaned)+len(habits))
		batch = append(batch, cleaned...)
		batch = append(batch, habits...)

		m := vectorize.Fit(tok, batch)
		user, catRows := m.Split(len(cleaned))
		out[i] = CategoryScore{
			Category: name,
			Score:    similarity.Mean(user, catRows),
		}
	}
	return out
}

// Dominant returns the highest-scoring category along with the full table.
// Ties go to the category listed first.
func Dominant(tok vectorize.Tokenizer, cleaned []string, cat *catalog.Catalog) (string, []CategoryScore) {
	scores := Scores(tok, cleaned, cat)
	return Argmax(scores), scores
}

// Argmax returns the first category with the maximum score, or "" for an
// empty table.
func Argmax(scores []CategoryScore) string {
	if len(scores) == 0 {
		return ""
	}
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i].Score > scores[best].Score {
			best = i
		}
	}
	return scores[best].Category
}
