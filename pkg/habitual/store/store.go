package store

import (
	"context"
	"time"

	"github.com/cognicore/habitual/pkg/habitual/catalog"
)

// Store persists engine decisions and named catalogs.
//
// It never holds a user's habits as a tracked entity; the habits attached to
// a Suggestion are the request input the decision was made from.
type Store interface {
	Close() error

	// Suggestions
	RecordSuggestion(ctx context.Context, s Suggestion) error
	GetSuggestion(ctx context.Context, id string) (Suggestion, error)
	ListSuggestions(ctx context.Context, q ListQuery) ([]Suggestion, error)
	CountSuggestions(ctx context.Context) (int64, error)

	// Catalogs
	SaveCatalog(ctx context.Context, name string, cat *catalog.Catalog) error
	LoadCatalog(ctx context.Context, name string) (*catalog.Catalog, error)
	ListCatalogs(ctx context.Context) ([]string, error)
}

// Suggestion is one recorded recommendation.
type Suggestion struct {
	ID         string    `json:"id"`
	Habits     []string  `json:"habits"`
	Suggestion string    `json:"suggestion"`
	Strategy   string    `json:"strategy"`
	Dominant   string    `json:"dominant_category,omitempty"`
	Next       string    `json:"next_category,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListQuery filters ListSuggestions. Results are newest first.
type ListQuery struct {
	Limit    int       // <= 0 means DefaultListLimit
	Since    time.Time // zero means no lower bound
	Strategy string    // empty means any
}

// DefaultListLimit caps ListSuggestions when no limit is given.
const DefaultListLimit = 100

// DefaultCatalogName is the name `catalog import` uses when none is given.
const DefaultCatalogName = "default"

// EffectiveLimit resolves the zero value of Limit.
func (q ListQuery) EffectiveLimit() int {
	if q.Limit <= 0 {
		return DefaultListLimit
	}
	return q.Limit
}

// Matches reports whether s passes the Since and Strategy filters.
func (q ListQuery) Matches(s Suggestion) bool {
	if !q.Since.IsZero() && s.CreatedAt.Before(q.Since) {
		return false
	}
	if q.Strategy != "" && s.Strategy != q.Strategy {
		return false
	}
	return true
}
