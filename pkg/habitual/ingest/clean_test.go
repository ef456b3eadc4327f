package ingest

import "testing"

func TestCleanHabits(t *testing.T) {
	rules := DefaultCleanRules()

	tests := []struct {
		name   string
		habits []string
		want   []string
	}{
		{"nil input", nil, []string{}},
		{"too short", []string{"gym", "run", "abc"}, []string{}},
		{"no vowels", []string{"xkcd", "rhythm", "!!!!"}, []string{}},
		{"uppercase vowel", []string{"WALK"}, []string{"WALK"}},
		{"keeps order", []string{"Read daily", "zz", "Meditate"}, []string{"Read daily", "Meditate"}},
		{"exactly four runes", []string{"yoga"}, []string{"yoga"}},
		{"multibyte counted as runes", []string{"ñañ"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanHabits(tt.habits, rules)
			if got == nil {
				t.Fatal("CleanHabits should never return nil")
			}
			if !equalTokens(got, tt.want) {
				t.Errorf("CleanHabits(%v) = %v, want %v", tt.habits, got, tt.want)
			}
		})
	}
}

func TestCleanRulesCustom(t *testing.T) {
	rules := CleanRules{MinLength: 1, Vowels: ""}

	if !rules.IsMeaningful("xz") {
		t.Error("empty vowel set should accept any long-enough habit")
	}
	if rules.IsMeaningful("x") {
		t.Error("length must exceed MinLength")
	}
}
