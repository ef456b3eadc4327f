package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cognicore/habitual/pkg/habitual/catalog"
	"github.com/cognicore/habitual/pkg/habitual/internalerr"
	"github.com/cognicore/habitual/pkg/habitual/store"
)

func openTestStore(t *testing.T) (store.Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := OpenSQLite(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st, dbPath
}

// TestSQLiteSuggestionRoundTrip tests basic insert and retrieval
func TestSQLiteSuggestionRoundTrip(t *testing.T) {
	ctx := context.Background()
	st, _ := openTestStore(t)

	in := store.Suggestion{
		ID:         "01HZX",
		Habits:     []string{"Read a book for 20 minutes", "gym", "Meditate daily"},
		Suggestion: "Workout for 30 minutes",
		Strategy:   "novel",
		Dominant:   "Learning",
		Next:       "Fitness",
		CreatedAt:  time.Date(2026, 3, 1, 8, 30, 0, 123, time.UTC),
	}
	if err := st.RecordSuggestion(ctx, in); err != nil {
		t.Fatalf("RecordSuggestion: %v", err)
	}

	got, err := st.GetSuggestion(ctx, in.ID)
	if err != nil {
		t.Fatalf("GetSuggestion: %v", err)
	}
	if got.Suggestion != in.Suggestion || got.Strategy != in.Strategy {
		t.Errorf("got %+v", got)
	}
	if got.Dominant != "Learning" || got.Next != "Fitness" {
		t.Errorf("categories mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(in.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, in.CreatedAt)
	}
	if strings.Join(got.Habits, "|") != strings.Join(in.Habits, "|") {
		t.Errorf("Habits = %v, want %v in order", got.Habits, in.Habits)
	}
}

// TestSQLiteRandomStrategyHasNoCategories tests empty optional columns
func TestSQLiteRandomStrategyHasNoCategories(t *testing.T) {
	ctx := context.Background()
	st, _ := openTestStore(t)

	in := store.Suggestion{ID: "r1", Suggestion: "Practice gratitude", Strategy: "random", CreatedAt: time.Now()}
	if err := st.RecordSuggestion(ctx, in); err != nil {
		t.Fatal(err)
	}

	got, err := st.GetSuggestion(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Dominant != "" || got.Next != "" || len(got.Habits) != 0 {
		t.Errorf("expected empty categories and habits, got %+v", got)
	}
}

// TestSQLiteErrors tests sentinel error mapping
func TestSQLiteErrors(t *testing.T) {
	ctx := context.Background()
	st, _ := openTestStore(t)

	if _, err := st.GetSuggestion(ctx, "missing"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("missing suggestion: got %v", err)
	}
	if err := st.RecordSuggestion(ctx, store.Suggestion{}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("empty id: got %v", err)
	}

	sg := store.Suggestion{ID: "x", Suggestion: "s", Strategy: "novel", CreatedAt: time.Now()}
	if err := st.RecordSuggestion(ctx, sg); err != nil {
		t.Fatal(err)
	}
	if err := st.RecordSuggestion(ctx, sg); !errors.Is(err, internalerr.ErrDuplicate) {
		t.Errorf("duplicate: got %v", err)
	}
	if _, err := st.LoadCatalog(ctx, "nope"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("missing catalog: got %v", err)
	}
}

// TestSQLiteListSuggestions tests ordering, filters and limits
func TestSQLiteListSuggestions(t *testing.T) {
	ctx := context.Background()
	st, _ := openTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	strategies := []string{"novel", "random", "novel", "fallback_any", "novel"}
	for i, strategy := range strategies {
		sg := store.Suggestion{
			ID:         fmt.Sprintf("s%d", i),
			Habits:     []string{fmt.Sprintf("habit %d", i)},
			Suggestion: "Walk 10,000 steps",
			Strategy:   strategy,
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		}
		if err := st.RecordSuggestion(ctx, sg); err != nil {
			t.Fatal(err)
		}
	}

	all, err := st.ListSuggestions(ctx, store.ListQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 || all[0].ID != "s4" || all[4].ID != "s0" {
		t.Fatalf("expected newest first, got %d results", len(all))
	}
	if all[0].Habits[0] != "habit 4" {
		t.Errorf("habits not loaded: %v", all[0].Habits)
	}

	novel, _ := st.ListSuggestions(ctx, store.ListQuery{Strategy: "novel", Limit: 2})
	if len(novel) != 2 || novel[0].ID != "s4" || novel[1].ID != "s2" {
		t.Errorf("novel filter: %+v", novel)
	}

	since, _ := st.ListSuggestions(ctx, store.ListQuery{Since: base.Add(3 * time.Hour)})
	if len(since) != 2 {
		t.Errorf("since filter returned %d, want 2", len(since))
	}

	if n, _ := st.CountSuggestions(ctx); n != 5 {
		t.Errorf("CountSuggestions = %d, want 5", n)
	}
}

// TestSQLiteCatalogPersistence tests catalog order survives a reopen
func TestSQLiteCatalogPersistence(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "catalog.db")

	cat, err := catalog.New([]catalog.Category{
		{Name: "Zeta", Habits: []string{"Sleep before 11 PM", "Practice gratitude"}},
		{Name: "Alpha", Habits: []string{"Walk 10,000 steps"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	st, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.SaveCatalog(ctx, "mine", cat); err != nil {
		t.Fatalf("SaveCatalog: %v", err)
	}
	st.Close()

	st, err = OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	loaded, err := st.LoadCatalog(ctx, "mine")
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if strings.Join(loaded.Names(), ",") != "Zeta,Alpha" {
		t.Errorf("Names = %v, want stored order", loaded.Names())
	}
	if strings.Join(loaded.Flatten(), "|") != strings.Join(cat.Flatten(), "|") {
		t.Errorf("Flatten = %v", loaded.Flatten())
	}
}

// TestSQLiteCatalogReplace tests that saving again replaces the old content
func TestSQLiteCatalogReplace(t *testing.T) {
	ctx := context.Background()
	st, _ := openTestStore(t)

	if err := st.SaveCatalog(ctx, store.DefaultCatalogName, catalog.Default()); err != nil {
		t.Fatal(err)
	}
	small, _ := catalog.New([]catalog.Category{
		{Name: "A", Habits: []string{"one habit"}},
		{Name: "B", Habits: []string{"two habit"}},
	})
	if err := st.SaveCatalog(ctx, store.DefaultCatalogName, small); err != nil {
		t.Fatal(err)
	}

	loaded, err := st.LoadCatalog(ctx, store.DefaultCatalogName)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Len() != 2 || len(loaded.Flatten()) != 2 {
		t.Errorf("expected replaced catalog, got %v", loaded.Categories())
	}

	names, _ := st.ListCatalogs(ctx)
	if len(names) != 1 || names[0] != store.DefaultCatalogName {
		t.Errorf("ListCatalogs = %v", names)
	}
}

// TestSchemaCreationIdempotent tests that running initSchema multiple times is safe
func TestSchemaCreationIdempotent(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Open database: %v", err)
	}
	defer db.Close()

	for i := 0; i < 3; i++ {
		if err := initSchema(ctx, db); err != nil {
			t.Fatalf("initSchema iteration %d: %v", i, err)
		}
	}

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&count)
	if err != nil {
		t.Fatalf("Count tables: %v", err)
	}

	expected := 5 // suggestions, suggestion_habits, catalogs, categories, category_habits
	if count != expected {
		t.Errorf("Expected %d tables, got %d", expected, count)
	}
}

// TestSQLiteConcurrentRecord tests concurrent writers
func TestSQLiteConcurrentRecord(t *testing.T) {
	ctx := context.Background()
	st, _ := openTestStore(t)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sg := store.Suggestion{
				ID:         fmt.Sprintf("c%02d", i),
				Habits:     []string{"Read daily"},
				Suggestion: "Practice gratitude",
				Strategy:   "novel",
				CreatedAt:  time.Now(),
			}
			errs <- st.RecordSuggestion(ctx, sg)
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent record: %v", err)
		}
	}
	if n, _ := st.CountSuggestions(ctx); n != 20 {
		t.Errorf("CountSuggestions = %d, want 20", n)
	}
}

// TestForeignKeysOnEveryConnection checks that pooled connections opened
// after the first one also enforce foreign keys.
func TestForeignKeysOnEveryConnection(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", dsn(filepath.Join(t.TempDir(), "fk.db")))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	db.SetMaxOpenConns(2)

	first, err := db.Conn(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer first.Close()
	second, err := db.Conn(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	for i, conn := range []*sql.Conn{first, second} {
		var on int
		if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&on); err != nil {
			t.Fatalf("conn %d: %v", i, err)
		}
		if on != 1 {
			t.Errorf("conn %d: foreign_keys = %d, want 1", i, on)
		}
	}
}

func TestDSN(t *testing.T) {
	if got := dsn("/tmp/h.db"); got != "file:/tmp/h.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)" {
		t.Errorf("dsn = %s", got)
	}
	if got := dsn("/tmp/h.db?cache=shared"); !strings.HasPrefix(got, "file:/tmp/h.db?cache=shared&_pragma=") {
		t.Errorf("dsn with query = %s", got)
	}
}
