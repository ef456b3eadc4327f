// Package postgres is a store.Store on PostgreSQL for deployments that run
// several service instances against one history.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cognicore/habitual/pkg/habitual/catalog"
	"github.com/cognicore/habitual/pkg/habitual/internalerr"
	"github.com/cognicore/habitual/pkg/habitual/store"
)

type postgresStore struct {
	pool *pgxpool.Pool
}

// Open migrates the schema at dsn and returns a pooled store.
func Open(ctx context.Context, dsn string) (store.Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing database config: %v", internalerr.ErrConfiguration, err)
	}

	config.MaxConns = 25
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, config)
	if err != nil {
		return nil, fmt.Errorf("%w: creating connection pool: %v", internalerr.ErrStoreUnavailable, err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: pinging database: %v", internalerr.ErrStoreUnavailable, err)
	}

	m, err := NewMigrator(dsn)
	if err != nil {
		pool.Close()
		return nil, err
	}
	defer m.Close()
	if err := m.Up(); err != nil {
		pool.Close()
		return nil, err
	}

	return &postgresStore{pool: pool}, nil
}

func (s *postgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *postgresStore) RecordSuggestion(ctx context.Context, sg store.Suggestion) error {
	if sg.ID == "" {
		return fmt.Errorf("%w: suggestion has no id", internalerr.ErrInvalidInput)
	}
	habits := sg.Habits
	if habits == nil {
		habits = []string{}
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO suggestions (id, habits, suggestion, strategy, dominant, next_category, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		sg.ID, habits, sg.Suggestion, sg.Strategy, sg.Dominant, sg.Next, sg.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording suggestion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: suggestion %s", internalerr.ErrDuplicate, sg.ID)
	}
	return nil
}

const suggestionColumns = `id, habits, suggestion, strategy, dominant, next_category, created_at`

func (s *postgresStore) GetSuggestion(ctx context.Context, id string) (store.Suggestion, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+suggestionColumns+` FROM suggestions WHERE id = $1`, id)
	sg, err := scanSuggestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Suggestion{}, fmt.Errorf("%w: suggestion %s", internalerr.ErrNotFound, id)
	}
	if err != nil {
		return store.Suggestion{}, fmt.Errorf("getting suggestion: %w", err)
	}
	return sg, nil
}

func (s *postgresStore) ListSuggestions(ctx context.Context, q store.ListQuery) ([]store.Suggestion, error) {
	var since *time.Time
	if !q.Since.IsZero() {
		t := q.Since.UTC()
		since = &t
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+suggestionColumns+`
		 FROM suggestions
		 WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		   AND ($2 = '' OR strategy = $2)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $3`,
		since, q.Strategy, q.EffectiveLimit(),
	)
	if err != nil {
		return nil, fmt.Errorf("listing suggestions: %w", err)
	}
	defer rows.Close()

	results := make([]store.Suggestion, 0)
	for rows.Next() {
		sg, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning suggestion: %w", err)
		}
		results = append(results, sg)
	}
	return results, rows.Err()
}

func (s *postgresStore) CountSuggestions(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM suggestions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting suggestions: %w", err)
	}
	return n, nil
}

func scanSuggestion(row pgx.Row) (store.Suggestion, error) {
	var sg store.Suggestion
	if err := row.Scan(&sg.ID, &sg.Habits, &sg.Suggestion, &sg.Strategy, &sg.Dominant, &sg.Next, &sg.CreatedAt); err != nil {
		return store.Suggestion{}, err
	}
	if sg.Habits == nil {
		sg.Habits = []string{}
	}
	sg.CreatedAt = sg.CreatedAt.UTC()
	return sg, nil
}

// SaveCatalog replaces the catalog stored under name in one transaction.
func (s *postgresStore) SaveCatalog(ctx context.Context, name string, cat *catalog.Catalog) error {
	if name == "" || cat == nil {
		return fmt.Errorf("%w: catalog name and content are required", internalerr.ErrInvalidInput)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM catalogs WHERE name = $1`, name); err != nil {
		return fmt.Errorf("replacing catalog: %w", err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO catalogs (name, updated_at) VALUES ($1, NOW())`, name); err != nil {
		return fmt.Errorf("inserting catalog: %w", err)
	}

	batch := &pgx.Batch{}
	for i, c := range cat.Categories() {
		batch.Queue(`INSERT INTO catalog_categories (catalog, position, name, habits) VALUES ($1, $2, $3, $4)`,
			name, i, c.Name, c.Habits)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting categories: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *postgresStore) LoadCatalog(ctx context.Context, name string) (*catalog.Catalog, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, habits FROM catalog_categories WHERE catalog = $1 ORDER BY position`, name)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	defer rows.Close()

	var categories []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.Name, &c.Habits); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: catalog %q", internalerr.ErrNotFound, name)
	}
	return catalog.New(categories)
}

func (s *postgresStore) ListCatalogs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name FROM catalogs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing catalogs: %w", err)
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
