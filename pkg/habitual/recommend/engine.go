package recommend

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/habitual/internal/logging"
	"github.com/cognicore/habitual/pkg/habitual/catalog"
	"github.com/cognicore/habitual/pkg/habitual/store"
)

// Observer is told about every decision the engine makes and every
// history write that fails.
type Observer interface {
	ObserveDecision(d Decision, elapsed time.Duration)
	ObserveHistoryError(err error)
}

// Options configures an Engine.
type Options struct {
	Policy   Policy
	Rand     Rand             // nil means GlobalRand; calls are serialized by the engine
	Store    store.Store      // optional suggestion history
	Observer Observer         // optional
	Now      func() time.Time // nil means time.Now
}

// Engine serves recommendations from one catalog. It is safe for
// concurrent use.
type Engine struct {
	cat      *catalog.Catalog
	policy   Policy
	rnd      Rand
	store    store.Store
	observer Observer
	now      func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewEngine validates the catalog once and returns an engine for it.
func NewEngine(cat *catalog.Catalog, opts Options) (*Engine, error) {
	if cat == nil {
		return nil, catalogError(0)
	}
	if err := catalog.Validate(cat.Categories()); err != nil {
		return nil, err
	}

	e := &Engine{
		cat:      cat,
		policy:   opts.Policy.withDefaults(),
		rnd:      opts.Rand,
		store:    opts.Store,
		observer: opts.Observer,
		now:      opts.Now,
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
	if e.rnd == nil {
		e.rnd = GlobalRand
	} else {
		e.rnd = &lockedRand{src: e.rnd}
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e, nil
}

// lockedRand lets concurrent Recommend calls share a Rand such as a seeded
// *rand.Rand, which is not safe for concurrent use on its own.
type lockedRand struct {
	mu  sync.Mutex
	src Rand
}

func (r *lockedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.IntN(n)
}

// Request is one recommendation call.
type Request struct {
	Habits []string
	Rand   Rand // overrides the engine's source for this call; not locked
}

// Response is a Decision stamped with an ID and time.
type Response struct {
	Decision
	ID        string
	CreatedAt time.Time
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.cat
}

// Recommend decides on a suggestion and records it in the history store if
// one is configured. A failed history write is logged, not returned.
func (e *Engine) Recommend(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	rnd := req.Rand
	if rnd == nil {
		rnd = e.rnd
	}

	start := time.Now()
	d, err := Decide(req.Habits, e.cat, rnd, e.policy)
	if err != nil {
		return Response{}, err
	}
	elapsed := time.Since(start)

	now := e.now()
	resp := Response{
		Decision:  d,
		ID:        e.newID(now),
		CreatedAt: now,
	}

	logging.Ctx(ctx).Debug().
		Str("id", resp.ID).
		Str("strategy", string(d.Strategy)).
		Str("dominant", d.Dominant).
		Str("next", d.Next).
		Int("cleaned", len(d.Cleaned)).
		Int("pool", len(d.Pool)).
		Dur("elapsed", elapsed).
		Msg("suggestion made")

	if e.observer != nil {
		e.observer.ObserveDecision(d, elapsed)
	}

	if e.store != nil {
		rec := store.Suggestion{
			ID:         resp.ID,
			Habits:     append([]string{}, req.Habits...),
			Suggestion: d.Suggestion,
			Strategy:   string(d.Strategy),
			Dominant:   d.Dominant,
			Next:       d.Next,
			CreatedAt:  now,
		}
		if err := e.store.RecordSuggestion(ctx, rec); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("id", resp.ID).Msg("record suggestion")
			if e.observer != nil {
				e.observer.ObserveHistoryError(err)
			}
		}
	}

	return resp, nil
}

func (e *Engine) newID(t time.Time) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), e.entropy).String()
}
