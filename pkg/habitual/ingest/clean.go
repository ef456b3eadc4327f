package ingest

import (
	"strings"
	"unicode/utf8"
)

const (
	// MinHabitLength is the rune length a habit must exceed to count as meaningful.
	MinHabitLength = 3

	// Vowels lists the characters of which a meaningful habit must contain at least one.
	Vowels = "aeiou"
)

// CleanRules decides which user habits carry enough signal to be vectorized.
type CleanRules struct {
	MinLength int    // habit must be strictly longer than this, in runes
	Vowels    string // habit must contain one of these, case-insensitive
}

// DefaultCleanRules returns the rules used when nothing is configured.
func DefaultCleanRules() CleanRules {
	return CleanRules{
		MinLength: MinHabitLength,
		Vowels:    Vowels,
	}
}

// IsMeaningful reports whether a habit passes the rules.
// "gym" is too short and "xkcd" has no vowel; "Walk the dog" passes.
func (r CleanRules) IsMeaningful(habit string) bool {
	if utf8.RuneCountInString(habit) <= r.MinLength {
		return false
	}
	if r.Vowels == "" {
		return true
	}
	return strings.ContainsAny(strings.ToLower(habit), strings.ToLower(r.Vowels))
}

// CleanHabits keeps the meaningful habits in their original order.
// The result is never nil.
func CleanHabits(habits []string, rules CleanRules) []string {
	out := make([]string, 0, len(habits))
	for _, h := range habits {
		if rules.IsMeaningful(h) {
			out = append(out, h)
		}
	}
	return out
}
