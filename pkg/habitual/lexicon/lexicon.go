package lexicon

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lexicon folds habit vocabulary onto canonical terms before vectorization,
// so "jog", "run" and "running" land on the same vector dimension.
//
// A Lexicon is built once at startup and then only read; it is safe to share
// between concurrent requests as long as no AddSynonymGroup call happens after
// it has been handed to a tokenizer.
type Lexicon struct {
	// canonical -> all variants (including canonical itself)
	// Example: "workout" -> ["workout", "exercise", "training"]
	synonyms map[string][]string

	// variant -> canonical
	reverseIndex map[string]string
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		synonyms:     make(map[string][]string),
		reverseIndex: make(map[string]string),
	}
}

// LoadFromYAML loads synonym mappings from a YAML file.
//
// Expected format:
//
//	synonyms:
//	  - canonical: workout
//	    variants: [exercise, training, gym]
//	  - canonical: meditate
//	    variants: [meditation, mindfulness]
//
// Variants are single terms; the tokenizer normalizes one term at a time.
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse builds a lexicon from YAML bytes in the LoadFromYAML format.
func Parse(data []byte) (*Lexicon, error) {
	var config struct {
		Synonyms []struct {
			Canonical string   `yaml:"canonical"`
			Variants  []string `yaml:"variants"`
		} `yaml:"synonyms"`
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}

	lex := New()
	for _, entry := range config.Synonyms {
		if strings.TrimSpace(entry.Canonical) == "" {
			continue
		}
		lex.AddSynonymGroup(entry.Canonical, entry.Variants)
	}

	return lex, nil
}

// AddSynonymGroup adds a synonym group with a canonical form and its variants.
// The canonical form is always the first entry of the group.
// Re-adding a canonical replaces its previous group.
func (l *Lexicon) AddSynonymGroup(canonical string, variants []string) {
	canonical = strings.ToLower(strings.TrimSpace(canonical))

	if oldVariants, exists := l.synonyms[canonical]; exists {
		for _, oldV := range oldVariants {
			delete(l.reverseIndex, oldV)
		}
	}

	normalized := make([]string, 0, len(variants)+1)
	seen := make(map[string]bool)

	normalized = append(normalized, canonical)
	seen[canonical] = true

	for _, v := range variants {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		normalized = append(normalized, v)
		seen[v] = true
	}

	l.synonyms[canonical] = normalized

	for _, v := range normalized {
		l.reverseIndex[v] = canonical
	}
}

// Normalize returns the canonical form of a token.
// If the token is not in the lexicon, returns the token itself.
//
// Examples:
//   - Normalize("exercise") -> "workout"
//   - Normalize("unknown") -> "unknown"
func (l *Lexicon) Normalize(token string) string {
	token = strings.ToLower(token)
	if canonical, ok := l.reverseIndex[token]; ok {
		return canonical
	}
	return token
}

// Variants returns all known variants of a token (including the canonical form).
// If the token is not in the lexicon, returns a slice containing only the token itself.
func (l *Lexicon) Variants(token string) []string {
	token = strings.ToLower(token)

	if canonical, ok := l.reverseIndex[token]; ok {
		if variants, ok := l.synonyms[canonical]; ok {
			out := make([]string, len(variants))
			copy(out, variants)
			return out
		}
	}

	return []string{token}
}

// HasSynonyms returns true if the token belongs to a synonym group.
func (l *Lexicon) HasSynonyms(token string) bool {
	_, exists := l.reverseIndex[strings.ToLower(token)]
	return exists
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() Stats {
	totalVariants := 0
	for _, variants := range l.synonyms {
		totalVariants += len(variants)
	}
	return Stats{
		SynonymGroups: len(l.synonyms),
		TotalVariants: totalVariants,
	}
}

// Stats holds statistics about lexicon contents.
type Stats struct {
	SynonymGroups int // Number of canonical forms
	TotalVariants int // Total number of variants across all groups
}
