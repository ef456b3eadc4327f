package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/habitual/pkg/habitual/catalog"
	"github.com/cognicore/habitual/pkg/habitual/internalerr"
	"github.com/cognicore/habitual/pkg/habitual/store"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode and foreign keys enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// One connection serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// dsn applies the pragmas on every connection the pool opens, not only the
// first one.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return "file:" + path + sep + "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS suggestions (
	id TEXT PRIMARY KEY,
	suggestion TEXT NOT NULL,
	strategy TEXT NOT NULL,
	dominant TEXT,
	next_category TEXT,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_suggestions_created ON suggestions(created_at);

CREATE TABLE IF NOT EXISTS suggestion_habits (
	suggestion_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	habit TEXT NOT NULL,
	PRIMARY KEY(suggestion_id, position),
	FOREIGN KEY(suggestion_id) REFERENCES suggestions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS catalogs (
	name TEXT PRIMARY KEY,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	catalog TEXT NOT NULL,
	name TEXT NOT NULL,
	position INTEGER NOT NULL,
	PRIMARY KEY(catalog, name),
	FOREIGN KEY(catalog) REFERENCES catalogs(name) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS category_habits (
	catalog TEXT NOT NULL,
	category TEXT NOT NULL,
	position INTEGER NOT NULL,
	habit TEXT NOT NULL,
	PRIMARY KEY(catalog, category, position),
	FOREIGN KEY(catalog, category) REFERENCES categories(catalog, name) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// RecordSuggestion inserts a suggestion and its input habits
func (s *sqliteStore) RecordSuggestion(ctx context.Context, sg store.Suggestion) error {
	if sg.ID == "" {
		return fmt.Errorf("%w: suggestion has no id", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
INSERT INTO suggestions (id, suggestion, strategy, dominant, next_category, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING`,
		sg.ID,
		sg.Suggestion,
		sg.Strategy,
		sg.Dominant,
		sg.Next,
		sg.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: suggestion %s", internalerr.ErrDuplicate, sg.ID)
	}

	if len(sg.Habits) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO suggestion_habits (suggestion_id, position, habit) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, h := range sg.Habits {
			if _, err := stmt.ExecContext(ctx, sg.ID, i, h); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// GetSuggestion retrieves a suggestion by ID
func (s *sqliteStore) GetSuggestion(ctx context.Context, id string) (store.Suggestion, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, suggestion, strategy, COALESCE(dominant, ''), COALESCE(next_category, ''), created_at
FROM suggestions WHERE id=?`, id)

	sg, err := scanSuggestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Suggestion{}, fmt.Errorf("%w: suggestion %s", internalerr.ErrNotFound, id)
	}
	if err != nil {
		return store.Suggestion{}, err
	}

	habits, err := s.loadHabits(ctx, id)
	if err != nil {
		return store.Suggestion{}, err
	}
	sg.Habits = habits
	return sg, nil
}

// ListSuggestions returns suggestions newest first
func (s *sqliteStore) ListSuggestions(ctx context.Context, q store.ListQuery) ([]store.Suggestion, error) {
	query := `
SELECT id, suggestion, strategy, COALESCE(dominant, ''), COALESCE(next_category, ''), created_at
FROM suggestions WHERE 1=1`
	var args []interface{}
	if !q.Since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, q.Since.UTC().Format(timeLayout))
	}
	if q.Strategy != "" {
		query += ` AND strategy = ?`
		args = append(args, q.Strategy)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, q.EffectiveLimit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]store.Suggestion, 0)
	for rows.Next() {
		sg, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, sg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range results {
		habits, err := s.loadHabits(ctx, results[i].ID)
		if err != nil {
			return nil, err
		}
		results[i].Habits = habits
	}
	return results, nil
}

// CountSuggestions returns the number of stored suggestions
func (s *sqliteStore) CountSuggestions(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM suggestions`).Scan(&n)
	return n, err
}

func (s *sqliteStore) loadHabits(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT habit FROM suggestion_habits WHERE suggestion_id=? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := make([]string, 0)
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSuggestion(r rowScanner) (store.Suggestion, error) {
	var sg store.Suggestion
	var created string
	if err := r.Scan(&sg.ID, &sg.Suggestion, &sg.Strategy, &sg.Dominant, &sg.Next, &created); err != nil {
		return store.Suggestion{}, err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return store.Suggestion{}, fmt.Errorf("parse created_at for %s: %w", sg.ID, err)
	}
	sg.CreatedAt = t
	return sg, nil
}

// SaveCatalog replaces the catalog stored under name
func (s *sqliteStore) SaveCatalog(ctx context.Context, name string, cat *catalog.Catalog) error {
	if name == "" || cat == nil {
		return fmt.Errorf("%w: catalog name and content are required", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Cascades to categories and category_habits.
	if _, err := tx.ExecContext(ctx, `DELETE FROM catalogs WHERE name=?`, name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO catalogs (name, updated_at) VALUES (?, ?)`,
		name, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	catStmt, err := tx.PrepareContext(ctx, `INSERT INTO categories (catalog, name, position) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer catStmt.Close()

	habitStmt, err := tx.PrepareContext(ctx, `INSERT INTO category_habits (catalog, category, position, habit) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer habitStmt.Close()

	for i, c := range cat.Categories() {
		if _, err := catStmt.ExecContext(ctx, name, c.Name, i); err != nil {
			return err
		}
		for j, h := range c.Habits {
			if _, err := habitStmt.ExecContext(ctx, name, c.Name, j, h); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// LoadCatalog rebuilds a catalog in stored position order
func (s *sqliteStore) LoadCatalog(ctx context.Context, name string) (*catalog.Catalog, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT c.name, h.habit
FROM categories c
LEFT JOIN category_habits h ON h.catalog = c.catalog AND h.category = c.name
WHERE c.catalog = ?
ORDER BY c.position, h.position`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []catalog.Category
	for rows.Next() {
		var catName string
		var habit sql.NullString
		if err := rows.Scan(&catName, &habit); err != nil {
			return nil, err
		}
		if n := len(categories); n == 0 || categories[n-1].Name != catName {
			categories = append(categories, catalog.Category{Name: catName})
		}
		if habit.Valid {
			last := &categories[len(categories)-1]
			last.Habits = append(last.Habits, habit.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: catalog %q", internalerr.ErrNotFound, name)
	}
	return catalog.New(categories)
}

// ListCatalogs returns stored catalog names in sorted order
func (s *sqliteStore) ListCatalogs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM catalogs ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
