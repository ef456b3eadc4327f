package lexicon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLexiconNew(t *testing.T) {
	lex := New()
	if lex == nil {
		t.Fatal("New() returned nil")
	}

	stats := lex.Stats()
	if stats.SynonymGroups != 0 {
		t.Errorf("New lexicon should have 0 synonym groups, got %d", stats.SynonymGroups)
	}
}

func TestLexiconAddSynonymGroup(t *testing.T) {
	lex := New()
	lex.AddSynonymGroup("workout", []string{"exercise", "training", "gym"})

	tests := []struct {
		input string
		want  string
	}{
		{"exercise", "workout"},
		{"Training", "workout"},
		{"workout", "workout"},
		{"walk", "walk"},
	}
	for _, tt := range tests {
		if got := lex.Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	variants := lex.Variants("gym")
	if len(variants) != 4 {
		t.Fatalf("Variants('gym') returned %d variants, want 4", len(variants))
	}
	if variants[0] != "workout" {
		t.Errorf("canonical should come first, got %q", variants[0])
	}
}

func TestLexiconReplaceGroup(t *testing.T) {
	lex := New()
	lex.AddSynonymGroup("read", []string{"reading", "study"})
	lex.AddSynonymGroup("read", []string{"reading"})

	if lex.HasSynonyms("study") {
		t.Error("study should have been dropped when the group was replaced")
	}
	if got := lex.Normalize("reading"); got != "read" {
		t.Errorf("Normalize('reading') = %q, want 'read'", got)
	}
}

func TestLexiconVariantsUnknown(t *testing.T) {
	lex := New()
	got := lex.Variants("Journal")
	if len(got) != 1 || got[0] != "journal" {
		t.Errorf("Variants of unknown token = %v, want [journal]", got)
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	content := `synonyms:
  - canonical: workout
    variants: [exercise, training]
  - canonical: meditate
    variants: [meditation, mindfulness]
  - canonical: ""
    variants: [ignored]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	lex, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML: %v", err)
	}

	stats := lex.Stats()
	if stats.SynonymGroups != 2 {
		t.Errorf("expected 2 groups, got %d", stats.SynonymGroups)
	}
	if stats.TotalVariants != 6 {
		t.Errorf("expected 6 variants, got %d", stats.TotalVariants)
	}
	if got := lex.Normalize("mindfulness"); got != "meditate" {
		t.Errorf("Normalize('mindfulness') = %q, want 'meditate'", got)
	}
	if lex.HasSynonyms("ignored") {
		t.Error("entry with empty canonical should be skipped")
	}
}

func TestLoadFromYAMLMissingFile(t *testing.T) {
	if _, err := LoadFromYAML(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("synonyms: [:::")); err == nil {
		t.Error("expected parse error")
	}
}
