package config

import (
	"context"
	"fmt"

	"github.com/cognicore/habitual/pkg/habitual/catalog"
	"github.com/cognicore/habitual/pkg/habitual/ingest"
	"github.com/cognicore/habitual/pkg/habitual/lexicon"
	"github.com/cognicore/habitual/pkg/habitual/recommend"
	"github.com/cognicore/habitual/pkg/habitual/store"
	"github.com/cognicore/habitual/pkg/habitual/store/memstore"
	"github.com/cognicore/habitual/pkg/habitual/store/postgres"
	"github.com/cognicore/habitual/pkg/habitual/store/sqlite"
)

// Loader turns a Config into ready components.
type Loader struct {
	Config *Config
}

// Components holds everything a command needs to serve recommendations.
// The caller owns Store and must close it.
type Components struct {
	Tokenizer *ingest.Tokenizer
	Lexicon   *lexicon.Lexicon // nil when no lexicon is configured
	Catalog   *catalog.Catalog
	Store     store.Store
	Policy    recommend.Policy
}

// Load opens the store, reads stopwords and lexicon, and resolves the catalog.
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	cfg := l.Config
	if cfg == nil {
		cfg = Default()
	}
	comp := &Components{}

	tok, lex, err := buildTokenizer(cfg.Engine)
	if err != nil {
		return nil, err
	}
	comp.Tokenizer = tok
	comp.Lexicon = lex

	st, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	comp.Store = st

	cat, err := loadCatalog(ctx, cfg.Catalog, st)
	if err != nil {
		st.Close()
		return nil, err
	}
	comp.Catalog = cat

	comp.Policy = recommend.Policy{
		Tokenizer: tok,
		CleanRules: ingest.CleanRules{
			MinLength: cfg.Engine.MinHabitLength,
			Vowels:    cfg.Engine.Vowels,
		},
		Threshold: cfg.Engine.Threshold,
	}
	return comp, nil
}

func buildTokenizer(cfg EngineConfig) (*ingest.Tokenizer, *lexicon.Lexicon, error) {
	stopwords := append([]string{}, cfg.Stopwords...)
	if cfg.StopwordsPath != "" {
		sl, err := LoadStoplist(cfg.StopwordsPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load stoplist: %w", err)
		}
		stopwords = append(stopwords, sl.Terms...)
	}
	tok := ingest.NewTokenizer(stopwords)

	if cfg.LexiconPath == "" {
		return tok, nil, nil
	}
	lex, err := lexicon.LoadFromYAML(cfg.LexiconPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load lexicon: %w", err)
	}
	return tok.WithLexicon(lex), lex, nil
}

// OpenStore opens the configured history backend.
func OpenStore(ctx context.Context, cfg StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case DriverSQLite:
		st, err := sqlite.OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store %s: %w", cfg.Path, err)
		}
		return st, nil
	case DriverPostgres:
		st, err := postgres.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return st, nil
	case DriverMemory, "":
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func loadCatalog(ctx context.Context, cfg CatalogConfig, st store.Store) (*catalog.Catalog, error) {
	switch cfg.Source {
	case CatalogFile:
		cat, err := catalog.LoadYAML(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		return cat, nil
	case CatalogStore:
		cat, err := st.LoadCatalog(ctx, cfg.Name)
		if err != nil {
			return nil, fmt.Errorf("load catalog %q from store: %w", cfg.Name, err)
		}
		return cat, nil
	case CatalogBuiltin, "":
		return catalog.Default(), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}
