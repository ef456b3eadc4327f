package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/habitual/pkg/habitual/catalog"
	"github.com/cognicore/habitual/pkg/habitual/internalerr"
	"github.com/cognicore/habitual/pkg/habitual/store"
)

// Store is an in-memory implementation of store.Store.
// History is lost when the process exits.
type Store struct {
	mu          sync.RWMutex
	suggestions map[string]store.Suggestion
	order       []string // insertion order of suggestion IDs
	catalogs    map[string]*catalog.Catalog
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		suggestions: make(map[string]store.Suggestion),
		catalogs:    make(map[string]*catalog.Catalog),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// RecordSuggestion stores a suggestion keyed by ID.
func (s *Store) RecordSuggestion(ctx context.Context, sg store.Suggestion) error {
	if sg.ID == "" {
		return fmt.Errorf("%w: suggestion has no id", internalerr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.suggestions[sg.ID]; exists {
		return fmt.Errorf("%w: suggestion %s", internalerr.ErrDuplicate, sg.ID)
	}
	s.suggestions[sg.ID] = copySuggestion(sg)
	s.order = append(s.order, sg.ID)
	return nil
}

// GetSuggestion returns a suggestion by ID.
func (s *Store) GetSuggestion(ctx context.Context, id string) (store.Suggestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sg, ok := s.suggestions[id]; ok {
		return copySuggestion(sg), nil
	}
	return store.Suggestion{}, fmt.Errorf("%w: suggestion %s", internalerr.ErrNotFound, id)
}

// ListSuggestions returns matching suggestions, newest first.
func (s *Store) ListSuggestions(ctx context.Context, q store.ListQuery) ([]store.Suggestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]store.Suggestion, 0)
	for _, id := range s.order {
		sg := s.suggestions[id]
		if q.Matches(sg) {
			results = append(results, copySuggestion(sg))
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].ID > results[j].ID
		}
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	if limit := q.EffectiveLimit(); len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// CountSuggestions returns the number of recorded suggestions.
func (s *Store) CountSuggestions(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.suggestions)), nil
}

// SaveCatalog stores cat under name, replacing any previous version.
func (s *Store) SaveCatalog(ctx context.Context, name string, cat *catalog.Catalog) error {
	if name == "" || cat == nil {
		return fmt.Errorf("%w: catalog name and content are required", internalerr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalogs[name] = cat
	return nil
}

// LoadCatalog returns the catalog saved under name.
func (s *Store) LoadCatalog(ctx context.Context, name string) (*catalog.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if cat, ok := s.catalogs[name]; ok {
		return cat, nil
	}
	return nil, fmt.Errorf("%w: catalog %q", internalerr.ErrNotFound, name)
}

// ListCatalogs returns saved catalog names in sorted order.
func (s *Store) ListCatalogs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.catalogs))
	for name := range s.catalogs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func copySuggestion(sg store.Suggestion) store.Suggestion {
	out := sg
	if sg.Habits != nil {
		out.Habits = append([]string(nil), sg.Habits...)
	}
	return out
}

var _ store.Store = (*Store)(nil)
