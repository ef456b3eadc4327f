package ingest

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cognicore/habitual/pkg/habitual/lexicon"
)

// MinTokenLength is the shortest term (in runes) the tokenizer emits.
const MinTokenLength = 2

// Tokenizer handles text tokenization and normalization.
//
// A term is a maximal run of letters, digits and underscores, lower-cased.
// Runs shorter than MinTokenLength are dropped, so "a" and "I" never become
// vocabulary entries while "20" and "pm" do.
//
// A Tokenizer is immutable after construction and safe for concurrent use.
type Tokenizer struct {
	stopwords map[string]struct{}
	lexicon   *lexicon.Lexicon // Optional: for synonym normalization
}

// NewTokenizer creates a new tokenizer with the given stopword list
func NewTokenizer(stopwords []string) *Tokenizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			stops[w] = struct{}{}
		}
	}
	return &Tokenizer{stopwords: stops}
}

// WithLexicon returns a copy of the tokenizer that normalizes tokens to their
// canonical forms. Example: "exercise" → "workout".
func (t *Tokenizer) WithLexicon(lex *lexicon.Lexicon) *Tokenizer {
	return &Tokenizer{stopwords: t.stopwords, lexicon: lex}
}

// Tokenize splits text into normalized tokens, removing stopwords.
// If a lexicon is set, tokens are normalized to their canonical forms.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	for _, r := range text {
		if isWordRune(r) {
			current.WriteRune(unicode.ToLower(r))
			continue
		}
		if current.Len() > 0 {
			if word := t.processToken(current.String()); word != "" {
				tokens = append(tokens, word)
			}
			current.Reset()
		}
	}

	// Don't forget the last token
	if current.Len() > 0 {
		if word := t.processToken(current.String()); word != "" {
			tokens = append(tokens, word)
		}
	}

	return tokens
}

// processToken applies length filtering, lexicon normalization, and stopword filtering.
func (t *Tokenizer) processToken(word string) string {
	if utf8.RuneCountInString(word) < MinTokenLength {
		return ""
	}

	if t.lexicon != nil {
		word = t.lexicon.Normalize(word)
	}

	if t.isStopword(word) {
		return ""
	}

	return word
}

func (t *Tokenizer) isStopword(word string) bool {
	_, ok := t.stopwords[word]
	return ok
}

// Stopwords returns the configured stopwords in no particular order.
func (t *Tokenizer) Stopwords() []string {
	out := make([]string, 0, len(t.stopwords))
	for w := range t.stopwords {
		out = append(out, w)
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_'
}
